package dto

import "livechat-backend/internal/model"

type CreateRoomRequest struct {
	TenantID     string            `json:"tenantId"`
	PublicKey    string            `json:"publicKey"`
	VisitorID    string            `json:"visitorId,omitempty"`
	VisitorName  string            `json:"visitorName,omitempty"`
	VisitorEmail string            `json:"visitorEmail,omitempty"`
	VisitorPhone string            `json:"visitorPhone,omitempty"`
	Title        string            `json:"title,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type PostMessageRequest struct {
	Content     string            `json:"content"`
	MessageType string            `json:"messageType,omitempty"`
	FileURL     string            `json:"fileUrl,omitempty"`
	FileName    string            `json:"fileName,omitempty"`
	FileSize    int64             `json:"fileSize,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type UpdateRoomStatusRequest struct {
	Status string `json:"status"`
}

type RoomResponse struct {
	RoomID        string            `json:"roomId"`
	TenantID      string            `json:"tenantId"`
	Title         string            `json:"title,omitempty"`
	Status        string            `json:"status"`
	VisitorID     string            `json:"visitorId,omitempty"`
	VisitorName   string            `json:"visitorName,omitempty"`
	VisitorEmail  string            `json:"visitorEmail,omitempty"`
	UnreadCount   int               `json:"unreadCount"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	LastMessageAt string            `json:"lastMessageAt,omitempty"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

type MessageResponse struct {
	MessageID   string            `json:"messageId"`
	RoomID      string            `json:"roomId"`
	SenderType  string            `json:"senderType"`
	StaffID     string            `json:"staffId,omitempty"`
	MessageType string            `json:"messageType"`
	Content     string            `json:"content"`
	FileURL     string            `json:"fileUrl,omitempty"`
	FileName    string            `json:"fileName,omitempty"`
	FileSize    int64             `json:"fileSize,omitempty"`
	IsRead      bool              `json:"isRead"`
	ReadAt      string            `json:"readAt,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"createdAt"`
}

type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

type MarkReadResponse struct {
	MarkedCount int `json:"markedCount"`
}

type ParticipantResponse struct {
	RoomID          string `json:"roomId"`
	ParticipantType string `json:"participantType"`
	StaffID         string `json:"staffId,omitempty"`
	VisitorID       string `json:"visitorId,omitempty"`
	IsOnline        bool   `json:"isOnline"`
	UnreadCount     int    `json:"unreadCount"`
	LastSeenAt      string `json:"lastSeenAt,omitempty"`
}

func RoomResponseFromItem(r model.RoomItem) RoomResponse {
	return RoomResponse{
		RoomID:        r.RoomID,
		TenantID:      r.TenantID,
		Title:         r.Title,
		Status:        string(r.Status),
		VisitorID:     r.VisitorID,
		VisitorName:   r.VisitorName,
		VisitorEmail:  r.VisitorEmail,
		UnreadCount:   r.UnreadCount,
		Metadata:      r.Metadata,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func MessageResponseFromItem(m model.MessageItem) MessageResponse {
	return MessageResponse{
		MessageID:   m.MessageID,
		RoomID:      m.RoomID,
		SenderType:  string(m.SenderType),
		StaffID:     m.StaffID,
		MessageType: string(m.MessageType),
		Content:     m.Content,
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
	}
}

func MessageResponsesFromItems(items []model.MessageItem) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, MessageResponseFromItem(m))
	}
	return out
}

func ParticipantResponseFromItem(p model.ParticipantItem) ParticipantResponse {
	return ParticipantResponse{
		RoomID:          p.RoomID,
		ParticipantType: string(p.ParticipantType),
		StaffID:         p.StaffID,
		VisitorID:       p.VisitorID,
		IsOnline:        p.IsOnline,
		UnreadCount:     p.UnreadCount,
		LastSeenAt:      p.LastSeenAt,
	}
}
