package jwt

type Role string

const (
	RoleStaff Role = "1"
)

// Staff is the authenticated principal carried by a staff token.
type Staff struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
