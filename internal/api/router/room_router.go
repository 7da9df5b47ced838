package router

import (
	"livechat-backend/internal/api"
	"livechat-backend/internal/api/endpoints"
	"livechat-backend/internal/api/middleware"
)

// RegisterRoomRoutes exposes the staff dashboard surface behind JWT auth.
func RegisterRoomRoutes(s *api.APIServer) {
	auth := middleware.ValidateStaffJWT

	s.Handle("GET "+s.Prefix+"/rooms", endpoints.HandleListRooms(s), auth)
	s.Handle("GET "+s.Prefix+"/rooms/{roomId}", endpoints.HandleGetRoom(s), auth)
	s.Handle("GET "+s.Prefix+"/rooms/{roomId}/messages", endpoints.HandleRoomMessages(s), auth)
	s.Handle("POST "+s.Prefix+"/rooms/{roomId}/messages", endpoints.HandlePostRoomMessage(s), auth)
	s.Handle("POST "+s.Prefix+"/rooms/{roomId}/read", endpoints.HandleMarkRoomRead(s), auth)
	s.Handle("PATCH "+s.Prefix+"/rooms/{roomId}/status", endpoints.HandleUpdateRoomStatus(s), auth)
	s.Handle("GET "+s.Prefix+"/rooms/{roomId}/participants", endpoints.HandleListParticipants(s), auth)
	s.Handle("GET "+s.Prefix+"/widget-key", endpoints.HandleGetWidgetKey(s), auth)
	s.Handle("POST "+s.Prefix+"/widget-key/regenerate", endpoints.HandleRegenerateWidgetKey(s), auth)
}
