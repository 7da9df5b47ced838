package router

import (
	"livechat-backend/internal/api"
	"livechat-backend/internal/api/endpoints"
)

func RegisterAuthRoutes(s *api.APIServer) {
	s.Handle("POST "+s.Prefix+"/auth/login", endpoints.HandleLogin(s))
	s.Handle("POST "+s.Prefix+"/auth/refresh", endpoints.HandleRefreshToken(s))
	s.Handle("POST "+s.Prefix+"/auth/register", endpoints.HandleRegisterStaff(s))
}
