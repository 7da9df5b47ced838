package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"livechat-backend/internal/dto"
	"livechat-backend/internal/model"
	"livechat-backend/internal/service/chat"
	"livechat-backend/utils"
)

const (
	historyLimit  = 50
	previewLength = 80
)

// ChatService is the slice of the chat service the gateway drives.
type ChatService interface {
	GetRoom(ctx context.Context, tenantID, roomID string) (*model.RoomItem, bool, error)
	PostMessage(ctx context.Context, input chat.PostMessageInput) (*model.MessageItem, *model.RoomItem, error)
	ListRoomMessages(ctx context.Context, tenantID, roomID string, limit int, before string) ([]model.MessageItem, bool, error)
	MarkRoomRead(ctx context.Context, tenantID, roomID string, reader model.ParticipantType, readerID string) (int, error)
	UpsertStaffParticipant(ctx context.Context, tenantID, roomID, staffID string, online bool) (bool, error)
	SetParticipantOnline(ctx context.Context, roomID string, kind model.ParticipantType, principalID string, online bool) error
}

// CredentialValidator authenticates visitor handshakes.
type CredentialValidator interface {
	Validate(ctx context.Context, tenantID, publicKey string) (*model.WidgetCredentialItem, bool, error)
}

// Gateway owns all live connections of one process. Channels fan events out,
// per-room locks serialize persist-then-broadcast so every member observes
// messages in the same order they were stored.
type Gateway struct {
	chatSvc   ChatService
	validator CredentialValidator

	// origin tags published frames so the redis bridge can drop this
	// process's own echoes.
	origin    string
	publisher Publisher

	mu        sync.RWMutex
	channels  map[string]*Channel
	roomLocks map[string]*sync.Mutex

	now func() time.Time
}

func New(chatSvc ChatService, validator CredentialValidator) *Gateway {
	return &Gateway{
		chatSvc:   chatSvc,
		validator: validator,
		origin:    uuid.NewString(),
		channels:  make(map[string]*Channel),
		roomLocks: make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// SetPublisher attaches the cross-process fan-out bridge.
func (g *Gateway) SetPublisher(p Publisher) {
	g.publisher = p
}

func (g *Gateway) Origin() string {
	return g.origin
}

func roomChannelID(roomID string) string {
	return "room:" + roomID
}

func tenantChannelID(tenantID string) string {
	return "tenant:" + tenantID
}

func (g *Gateway) subscribe(channelID string, c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[channelID]
	if !ok {
		ch = newChannel(channelID)
		g.channels[channelID] = ch
		channelsGauge.Inc()
	}
	ch.add(c)
}

// unsubscribe drops the client and reaps the channel once its membership
// hits zero, so long-lived processes do not accumulate dead rooms. The room
// lock goes with it: with no members left nobody can hold it, and the next
// sender must join first.
func (g *Gateway) unsubscribe(channelID string, c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[channelID]
	if !ok {
		return
	}
	ch.remove(c)
	if ch.size() == 0 {
		delete(g.channels, channelID)
		ch.stop()
		channelsGauge.Dec()
		delete(g.roomLocks, roomIDFromChannel(channelID))
	}
}

func roomIDFromChannel(channelID string) string {
	return strings.TrimPrefix(channelID, "room:")
}

func (g *Gateway) roomLock(roomID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		g.roomLocks[roomID] = lock
	}
	return lock
}

// NewClient registers an authenticated connection and starts its pumps.
// Staff are subscribed to their tenant feed immediately.
func (g *Gateway) NewClient(conn *websocket.Conn, tenantID string, userType UserType, userID string) *Client {
	c := &Client{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		UserType: userType,
		UserID:   userID,
		conn:     conn,
		send:     make(chan OutboundEvent, sendBufferSize),
		gateway:  g,
		rooms:    make(map[string]bool),
	}

	connectionsGauge.Inc()
	if userType == UserTypeStaff {
		g.subscribe(tenantChannelID(tenantID), c)
	}

	go c.writePump()
	go c.readPump()
	return c
}

func (g *Gateway) disconnect(c *Client) {
	ctx := context.Background()
	for _, roomID := range c.trackedRooms() {
		g.unsubscribe(roomChannelID(roomID), c)
		kind := model.ParticipantTypeVisitor
		if c.UserType == UserTypeStaff {
			kind = model.ParticipantTypeStaff
		}
		_ = g.chatSvc.SetParticipantOnline(ctx, roomID, kind, c.UserID, false)
	}
	if c.UserType == UserTypeStaff {
		g.unsubscribe(tenantChannelID(c.TenantID), c)
	}
	c.closeSend()
	connectionsGauge.Dec()
}

// handleEvent dispatches one inbound frame. Failures are answered with an
// error frame on the same connection and never tear it down.
func (g *Gateway) handleEvent(ctx context.Context, c *Client, ev InboundEvent) {
	eventsCounter.WithLabelValues(ev.Type).Inc()

	switch ev.Type {
	case EventJoinRoom:
		g.handleJoinRoom(ctx, c, ev)
	case EventSendMessage:
		g.handleSendMessage(ctx, c, ev)
	case EventMarkRead:
		g.handleMarkRead(ctx, c, ev)
	case EventTyping:
		g.handleTyping(c, ev)
	default:
		g.sendError(c, ev.RoomID, "unknown_event", "unknown event type")
	}
}

func (g *Gateway) handleJoinRoom(ctx context.Context, c *Client, ev InboundEvent) {
	if ev.RoomID == "" {
		g.sendError(c, "", "validation_error", "roomId is required")
		return
	}

	switch c.UserType {
	case UserTypeStaff:
		found, err := g.chatSvc.UpsertStaffParticipant(ctx, c.TenantID, ev.RoomID, c.UserID, true)
		if err != nil {
			g.sendError(c, ev.RoomID, "internal_error", "failed to join room")
			return
		}
		if !found {
			g.sendError(c, ev.RoomID, "not_found", "room not found")
			return
		}
	case UserTypeVisitor:
		room, found, err := g.chatSvc.GetRoom(ctx, c.TenantID, ev.RoomID)
		if err != nil {
			g.sendError(c, ev.RoomID, "internal_error", "failed to join room")
			return
		}
		if !found || room.VisitorID != c.UserID {
			g.sendError(c, ev.RoomID, "not_found", "room not found")
			return
		}
		_ = g.chatSvc.SetParticipantOnline(ctx, ev.RoomID, model.ParticipantTypeVisitor, c.UserID, true)
	}

	g.subscribe(roomChannelID(ev.RoomID), c)
	c.trackRoom(ev.RoomID)

	history, _, err := g.chatSvc.ListRoomMessages(ctx, c.TenantID, ev.RoomID, historyLimit, "")
	if err != nil {
		g.sendError(c, ev.RoomID, "internal_error", "failed to load history")
		return
	}
	c.enqueue(OutboundEvent{
		Type:      EventRoomMessages,
		RoomID:    ev.RoomID,
		Messages:  dto.MessageResponsesFromItems(history),
		Timestamp: g.timestamp(),
	})
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, ev InboundEvent) {
	if !c.inRoom(ev.RoomID) {
		g.sendError(c, ev.RoomID, "forbidden", "join the room before sending")
		return
	}

	input := chat.PostMessageInput{
		TenantID:    c.TenantID,
		RoomID:      ev.RoomID,
		MessageType: model.MessageType(ev.MessageType),
		Content:     ev.Content,
		FileURL:     ev.FileURL,
		FileName:    ev.FileName,
		FileSize:    ev.FileSize,
	}
	if c.UserType == UserTypeStaff {
		input.SenderType = model.SenderTypeStaff
		input.StaffID = c.UserID
	} else {
		input.SenderType = model.SenderTypeVisitor
	}

	// The lock spans persist and broadcast so concurrent senders cannot
	// interleave a later message's fan-out ahead of an earlier one.
	lock := g.roomLock(ev.RoomID)
	lock.Lock()
	msg, room, err := g.chatSvc.PostMessage(ctx, input)
	if err != nil {
		lock.Unlock()
		g.sendServiceError(c, ev.RoomID, err)
		return
	}

	resp := dto.MessageResponseFromItem(*msg)
	g.broadcast(roomChannelID(ev.RoomID), OutboundEvent{
		Type:      EventNewMessage,
		RoomID:    ev.RoomID,
		Message:   &resp,
		Timestamp: msg.CreatedAt,
	}, "")

	// The tenant feed gets a summary only, never the full body. Staff who
	// have the room open already received the message above.
	g.broadcast(tenantChannelID(c.TenantID), OutboundEvent{
		Type:        EventRoomActivity,
		RoomID:      ev.RoomID,
		Preview:     utils.Truncate(msg.Content, previewLength),
		UnreadCount: room.UnreadCount,
		UserType:    string(c.UserType),
		Timestamp:   msg.CreatedAt,
	}, "")
	lock.Unlock()
}

// handleMarkRead is a staff action. Visitor connections get a forbidden
// error frame.
func (g *Gateway) handleMarkRead(ctx context.Context, c *Client, ev InboundEvent) {
	if c.UserType != UserTypeStaff {
		g.sendError(c, ev.RoomID, "forbidden", "mark_read is a staff action")
		return
	}
	if !c.inRoom(ev.RoomID) {
		g.sendError(c, ev.RoomID, "forbidden", "join the room before marking read")
		return
	}

	marked, err := g.chatSvc.MarkRoomRead(ctx, c.TenantID, ev.RoomID, model.ParticipantTypeStaff, c.UserID)
	if err != nil {
		g.sendServiceError(c, ev.RoomID, err)
		return
	}
	if marked == 0 {
		return
	}

	g.broadcast(roomChannelID(ev.RoomID), OutboundEvent{
		Type:      EventMessagesRead,
		RoomID:    ev.RoomID,
		UserID:    c.UserID,
		UserType:  string(c.UserType),
		ReadCount: marked,
		Timestamp: g.timestamp(),
	}, c.ID)
}

// handleTyping relays presence without persisting anything.
func (g *Gateway) handleTyping(c *Client, ev InboundEvent) {
	if !c.inRoom(ev.RoomID) {
		return
	}
	g.broadcast(roomChannelID(ev.RoomID), OutboundEvent{
		Type:      EventUserTyping,
		RoomID:    ev.RoomID,
		UserID:    c.UserID,
		UserType:  string(c.UserType),
		Typing:    ev.Typing,
		Timestamp: g.timestamp(),
	}, c.ID)
}

// broadcast delivers locally and, when a publisher is attached, to the other
// processes as well.
func (g *Gateway) broadcast(channelID string, ev OutboundEvent, exceptID string) {
	g.broadcastLocal(channelID, ev, exceptID)
	if g.publisher != nil {
		_ = g.publisher.Publish(context.Background(), channelID, ev, exceptID)
	}
}

// broadcastLocal drops frames for channels without local members instead of
// materializing an empty channel for them.
func (g *Gateway) broadcastLocal(channelID string, ev OutboundEvent, exceptID string) {
	g.mu.RLock()
	ch, ok := g.channels[channelID]
	g.mu.RUnlock()
	if !ok {
		return
	}
	ch.broadcast <- broadcastFrame{event: ev, exceptID: exceptID}
}

func (g *Gateway) sendError(c *Client, roomID, code, message string) {
	errorsCounter.Inc()
	c.enqueue(OutboundEvent{
		Type:      EventError,
		RoomID:    roomID,
		Code:      code,
		Error:     message,
		Timestamp: g.timestamp(),
	})
}

func (g *Gateway) sendServiceError(c *Client, roomID string, err error) {
	if svcErr, ok := err.(*chat.Error); ok {
		g.sendError(c, roomID, string(svcErr.Code), svcErr.Message)
		return
	}
	g.sendError(c, roomID, "internal_error", "request failed")
}

func (g *Gateway) timestamp() string {
	return g.now().UTC().Format(model.TimeFormat)
}
