package router

import (
	"livechat-backend/internal/api"
	"livechat-backend/internal/api/endpoints"
)

func RegisterUtilsRoutes(s *api.APIServer) {
	s.Handle("GET "+s.Prefix+"/healthz", endpoints.HandleHealthz(s))
}
