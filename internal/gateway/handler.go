package gateway

import (
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"livechat-backend/internal/env"
	"livechat-backend/internal/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		allowed := env.Get(env.WebURL)
		if allowed == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	},
}

type Handler struct {
	gateway *Gateway
}

func NewHandler(g *Gateway) *Handler {
	return &Handler{gateway: g}
}

// ServeWS authenticates the handshake and only then upgrades. A request that
// fails authentication never becomes a websocket.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tenantID, userType, userID, ok := h.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: upgrade failed: %v", err)
		return
	}

	h.gateway.NewClient(conn, tenantID, userType, userID)
}

func (h *Handler) authenticate(r *http.Request) (tenantID string, userType UserType, userID string, ok bool) {
	if token := bearerToken(r); token != "" {
		staff, role, err := jwt.ParseToken(token)
		if err != nil || role != jwt.RoleStaff {
			return "", "", "", false
		}
		return staff.TenantID, UserTypeStaff, staff.ID, true
	}

	query := r.URL.Query()
	tenantID = query.Get("tenantId")
	publicKey := query.Get("publicKey")
	_, valid, err := h.gateway.validator.Validate(r.Context(), tenantID, publicKey)
	if err != nil || !valid {
		return "", "", "", false
	}

	visitorID := query.Get("visitorId")
	if visitorID == "" {
		visitorID = uuid.NewString()
	}
	return tenantID, UserTypeVisitor, visitorID, true
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
