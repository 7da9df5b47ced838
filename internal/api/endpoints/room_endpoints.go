package endpoints

import (
	"net/http"

	"livechat-backend/internal/api"
	"livechat-backend/internal/api/middleware"
	"livechat-backend/internal/dto"
	"livechat-backend/internal/model"
	"livechat-backend/internal/service/chat"
)

func staffFromRequest(r *http.Request) (tenantID, staffID string, err error) {
	staff, ok := middleware.StaffFromContext(r.Context())
	if !ok {
		return "", "", api.NewHTTPError(http.StatusUnauthorized, "unauthorized", nil)
	}
	return staff.TenantID, staff.ID, nil
}

func HandleListRooms(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		rooms, total, err := s.Chat.ListRooms(r.Context(), tenantID, chat.ListRoomsFilter{
			Status: model.RoomStatus(r.URL.Query().Get("status")),
			Search: r.URL.Query().Get("search"),
			Limit:  api.QueryInt(r, "limit", 0),
			Offset: api.QueryInt(r, "offset", 0),
		})
		if err != nil {
			return err
		}

		resp := dto.RoomListResponse{Rooms: make([]dto.RoomResponse, 0, len(rooms)), Total: total}
		for _, room := range rooms {
			resp.Rooms = append(resp.Rooms, dto.RoomResponseFromItem(room))
		}
		return api.WriteJSON(w, http.StatusOK, resp)
	}
}

func HandleGetRoom(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		room, found, err := s.Chat.GetRoom(r.Context(), tenantID, r.PathValue("roomId"))
		if err != nil {
			return err
		}
		if !found {
			return api.NewHTTPError(http.StatusNotFound, "room not found", nil)
		}
		return api.WriteJSON(w, http.StatusOK, dto.RoomResponseFromItem(*room))
	}
}

func HandleRoomMessages(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		msgs, found, err := s.Chat.ListRoomMessages(r.Context(), tenantID, r.PathValue("roomId"),
			api.QueryInt(r, "limit", 0), r.URL.Query().Get("before"))
		if err != nil {
			return err
		}
		if !found {
			return api.NewHTTPError(http.StatusNotFound, "room not found", nil)
		}
		return api.WriteJSON(w, http.StatusOK, dto.MessageListResponse{
			Messages: dto.MessageResponsesFromItems(msgs),
		})
	}
}

func HandlePostRoomMessage(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, staffID, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		var req dto.PostMessageRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		msg, _, err := s.Chat.PostMessage(r.Context(), chat.PostMessageInput{
			TenantID:    tenantID,
			RoomID:      r.PathValue("roomId"),
			SenderType:  model.SenderTypeStaff,
			StaffID:     staffID,
			MessageType: model.MessageType(req.MessageType),
			Content:     req.Content,
			FileURL:     req.FileURL,
			FileName:    req.FileName,
			FileSize:    req.FileSize,
			Metadata:    req.Metadata,
		})
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusCreated, dto.MessageResponseFromItem(*msg))
	}
}

func HandleMarkRoomRead(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, staffID, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		marked, err := s.Chat.MarkRoomRead(r.Context(), tenantID, r.PathValue("roomId"),
			model.ParticipantTypeStaff, staffID)
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, dto.MarkReadResponse{MarkedCount: marked})
	}
}

func HandleUpdateRoomStatus(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		var req dto.UpdateRoomStatusRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			return api.NewHTTPError(http.StatusBadRequest, "invalid request body", err)
		}

		room, found, err := s.Chat.UpdateRoomStatus(r.Context(), tenantID, r.PathValue("roomId"),
			model.RoomStatus(req.Status))
		if err != nil {
			return err
		}
		if !found {
			return api.NewHTTPError(http.StatusNotFound, "room not found", nil)
		}
		return api.WriteJSON(w, http.StatusOK, dto.RoomResponseFromItem(*room))
	}
}

func HandleListParticipants(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		parts, found, err := s.Chat.ListParticipants(r.Context(), tenantID, r.PathValue("roomId"))
		if err != nil {
			return err
		}
		if !found {
			return api.NewHTTPError(http.StatusNotFound, "room not found", nil)
		}

		resp := make([]dto.ParticipantResponse, 0, len(parts))
		for _, p := range parts {
			resp = append(resp, dto.ParticipantResponseFromItem(p))
		}
		return api.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleGetWidgetKey returns the tenant's active credential, creating one on
// first call. The secret is only included when the credential is fresh.
func HandleGetWidgetKey(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		cred, created, err := s.Widget.GetOrCreate(r.Context(), tenantID)
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, dto.WidgetCredentialResponseFromItem(*cred, created))
	}
}

func HandleRegenerateWidgetKey(s *api.APIServer) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		tenantID, _, err := staffFromRequest(r)
		if err != nil {
			return err
		}

		cred, err := s.Widget.Regenerate(r.Context(), tenantID)
		if err != nil {
			return err
		}
		return api.WriteJSON(w, http.StatusOK, dto.WidgetCredentialResponseFromItem(*cred, true))
	}
}
