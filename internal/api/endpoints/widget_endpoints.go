package endpoints

import (
	"net/http"

	"livechat-backend/internal/api"
	"livechat-backend/internal/dto"
	"livechat-backend/internal/service/chat"
)

type createRoomResponse struct {
	Room    dto.RoomResponse `json:"room"`
	Resumed bool             `json:"resumed"`
}

// HandleCreateRoom opens or resumes a visitor room. It is the widget's entry
// point and authenticates with the tenant's public key instead of a JWT.
func HandleCreateRoom(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req dto.CreateRoomRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		_, ok, err := s.Widget.Validate(r.Context(), req.TenantID, req.PublicKey)
		if err != nil {
			return err
		}
		if !ok {
			return api.NewHTTPError(http.StatusUnauthorized, "invalid widget credentials", nil)
		}

		room, resumed, err := s.Chat.CreateOrResumeRoom(r.Context(), req.TenantID, chat.CreateRoomInput{
			VisitorID:    req.VisitorID,
			VisitorName:  req.VisitorName,
			VisitorEmail: req.VisitorEmail,
			VisitorPhone: req.VisitorPhone,
			Title:        req.Title,
			Metadata:     req.Metadata,
		})
		if err != nil {
			return err
		}

		status := http.StatusCreated
		if resumed {
			status = http.StatusOK
		}
		return api.WriteJSON(w, status, createRoomResponse{
			Room:    dto.RoomResponseFromItem(*room),
			Resumed: resumed,
		})
	}
}

// HandlePublicRoomMessages lets the widget poll history without a socket.
// The visitor must present the widget key and their own visitor id.
func HandlePublicRoomMessages(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		query := r.URL.Query()
		tenantID := query.Get("tenantId")
		publicKey := query.Get("publicKey")
		visitorID := query.Get("visitorId")
		roomID := r.PathValue("roomId")

		_, ok, err := s.Widget.Validate(r.Context(), tenantID, publicKey)
		if err != nil {
			return err
		}
		if !ok {
			return api.NewHTTPError(http.StatusUnauthorized, "invalid widget credentials", nil)
		}

		room, found, err := s.Chat.GetRoom(r.Context(), tenantID, roomID)
		if err != nil {
			return err
		}
		if !found || room.VisitorID != visitorID {
			return api.NewHTTPError(http.StatusNotFound, "room not found", nil)
		}

		msgs, _, err := s.Chat.ListRoomMessages(r.Context(), tenantID, roomID,
			api.QueryInt(r, "limit", 0), query.Get("before"))
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, dto.MessageListResponse{
			Messages: dto.MessageResponsesFromItems(msgs),
		})
	}
}
