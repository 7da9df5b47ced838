package endpoints

import (
	"net/http"

	"livechat-backend/internal/api"
)

func HandleHealthz(_ *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		return api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
