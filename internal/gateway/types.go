package gateway

import "livechat-backend/internal/dto"

const (
	EventJoinRoom    = "join_room"
	EventSendMessage = "send_message"
	EventMarkRead    = "mark_read"
	EventTyping      = "typing"

	EventNewMessage   = "new_message"
	EventRoomMessages = "room_messages"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
	EventRoomActivity = "room_activity"
	EventError        = "error"
)

type UserType string

const (
	UserTypeStaff   UserType = "staff"
	UserTypeVisitor UserType = "visitor"
)

type InboundEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId,omitempty"`
	Content     string `json:"content,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	Typing      bool   `json:"typing,omitempty"`
}

// OutboundEvent is the single frame shape pushed to clients. Which fields are
// populated depends on Type. Error details ride in the error and code fields
// since message carries the chat payload.
type OutboundEvent struct {
	Type        string                `json:"type"`
	RoomID      string                `json:"roomId,omitempty"`
	Message     *dto.MessageResponse  `json:"message,omitempty"`
	Messages    []dto.MessageResponse `json:"messages,omitempty"`
	UserID      string                `json:"userId,omitempty"`
	UserType    string                `json:"userType,omitempty"`
	Typing      bool                  `json:"typing,omitempty"`
	Preview     string                `json:"preview,omitempty"`
	UnreadCount int                   `json:"unreadCount,omitempty"`
	ReadCount   int                   `json:"readCount,omitempty"`
	Error       string                `json:"error,omitempty"`
	Code        string                `json:"code,omitempty"`
	Timestamp   string                `json:"timestamp,omitempty"`
}
