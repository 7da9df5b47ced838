package endpoints

// Aliases so the external test package can reference unexported types.
type (
	CreateRoomResponse = createRoomResponse
	LoginRequest       = loginRequest
	RegisterRequest    = registerRequest
)
