package model

import "fmt"

type RoomStatus string

const (
	RoomStatusActive   RoomStatus = "active"
	RoomStatusClosed   RoomStatus = "closed"
	RoomStatusArchived RoomStatus = "archived"
)

type SenderType string

const (
	SenderTypeStaff   SenderType = "staff"
	SenderTypeVisitor SenderType = "visitor"
	SenderTypeSystem  SenderType = "system"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

type ParticipantType string

const (
	ParticipantTypeStaff   ParticipantType = "staff"
	ParticipantTypeVisitor ParticipantType = "visitor"
)

func RoomPK(tenantID, roomID string) string {
	return fmt.Sprintf("%s#%s", tenantID, roomID)
}

func MessagePK(roomID, messageID string) string {
	return fmt.Sprintf("%s#%s", roomID, messageID)
}

func ParticipantPK(roomID string, kind ParticipantType, principalID string) string {
	return fmt.Sprintf("%s#%s#%s", roomID, kind, principalID)
}

type RoomItem struct {
	PK            string            `dynamodbav:"pk"`
	RoomID        string            `dynamodbav:"roomId"`
	TenantID      string            `dynamodbav:"tenantId"`
	Title         string            `dynamodbav:"title,omitempty"`
	Status        RoomStatus        `dynamodbav:"status"`
	VisitorID     string            `dynamodbav:"visitorId,omitempty"`
	VisitorName   string            `dynamodbav:"visitorName,omitempty"`
	VisitorEmail  string            `dynamodbav:"visitorEmail,omitempty"`
	VisitorPhone  string            `dynamodbav:"visitorPhone,omitempty"`
	UnreadCount   int               `dynamodbav:"unreadCount"`
	Metadata      map[string]string `dynamodbav:"metadata,omitempty"`
	LastMessageAt string            `dynamodbav:"lastMessageAt,omitempty"`
	CreatedAt     string            `dynamodbav:"createdAt"`
	UpdatedAt     string            `dynamodbav:"updatedAt"`
}

// Seq is a process-local monotonic counter used to break CreatedAt ties when
// ordering messages inside one room.
type MessageItem struct {
	PK          string            `dynamodbav:"pk"`
	TenantID    string            `dynamodbav:"tenantId"`
	RoomID      string            `dynamodbav:"roomId"`
	MessageID   string            `dynamodbav:"messageId"`
	Seq         int64             `dynamodbav:"seq"`
	SenderType  SenderType        `dynamodbav:"senderType"`
	StaffID     string            `dynamodbav:"staffId,omitempty"`
	MessageType MessageType       `dynamodbav:"messageType"`
	Content     string            `dynamodbav:"content"`
	FileURL     string            `dynamodbav:"fileUrl,omitempty"`
	FileName    string            `dynamodbav:"fileName,omitempty"`
	FileSize    int64             `dynamodbav:"fileSize,omitempty"`
	IsRead      bool              `dynamodbav:"isRead"`
	ReadAt      string            `dynamodbav:"readAt,omitempty"`
	Metadata    map[string]string `dynamodbav:"metadata,omitempty"`
	CreatedAt   string            `dynamodbav:"createdAt"`
}

type ParticipantItem struct {
	PK              string          `dynamodbav:"pk"`
	RoomID          string          `dynamodbav:"roomId"`
	ParticipantType ParticipantType `dynamodbav:"participantType"`
	StaffID         string          `dynamodbav:"staffId,omitempty"`
	VisitorID       string          `dynamodbav:"visitorId,omitempty"`
	IsOnline        bool            `dynamodbav:"isOnline"`
	UnreadCount     int             `dynamodbav:"unreadCount"`
	LastSeenAt      string          `dynamodbav:"lastSeenAt,omitempty"`
}
