package endpoints

import (
	"net/http"

	"livechat-backend/internal/api"
	"livechat-backend/internal/jwt"
	"livechat-backend/internal/service/staff"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registerRequest struct {
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

func HandleLogin(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req loginRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		principal, err := s.Staff.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			return err
		}

		tokens, err := jwt.CreateTokenWithRefresh(r.Context(), jwt.RoleStaff, *principal)
		if err != nil {
			return api.NewHTTPError(http.StatusInternalServerError, "failed to issue tokens", err)
		}
		return api.WriteJSON(w, http.StatusOK, tokens)
	}
}

func HandleRefreshToken(_ *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req refreshRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		tokens, err := jwt.RefreshToken(r.Context(), jwt.RoleStaff, req.RefreshToken)
		if err != nil {
			return api.NewHTTPError(http.StatusUnauthorized, "invalid refresh token", err)
		}
		return api.WriteJSON(w, http.StatusOK, tokens)
	}
}

func HandleRegisterStaff(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req registerRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		item, err := s.Staff.Register(r.Context(), staff.RegisterInput{
			TenantID: req.TenantID,
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
		})
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusCreated, map[string]string{
			"staffId":  item.StaffID,
			"tenantId": item.TenantID,
			"email":    item.Email,
		})
	}
}
