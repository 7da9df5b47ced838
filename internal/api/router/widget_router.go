package router

import (
	"livechat-backend/internal/api"
	"livechat-backend/internal/api/endpoints"
)

// RegisterWidgetRoutes exposes the visitor-facing surface. These routes
// authenticate with widget credentials, not JWTs.
func RegisterWidgetRoutes(s *api.APIServer) {
	s.Handle("POST "+s.Prefix+"/rooms", endpoints.HandleCreateRoom(s))
	s.Handle("GET "+s.Prefix+"/rooms/{roomId}/messages", endpoints.HandlePublicRoomMessages(s))
}
