package gateway

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"livechat-backend/internal/model"
	"livechat-backend/internal/service/chat"
)

type stubChat struct {
	mu      sync.Mutex
	rooms   map[string]model.RoomItem
	history []model.MessageItem
	postErr error
	marked  int
	seq     int64
	// order records message contents in the order they were stored.
	order []string
}

func newStubChat() *stubChat {
	return &stubChat{rooms: make(map[string]model.RoomItem)}
}

func (s *stubChat) addRoom(tenantID, roomID, visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[model.RoomPK(tenantID, roomID)] = model.RoomItem{
		PK:        model.RoomPK(tenantID, roomID),
		RoomID:    roomID,
		TenantID:  tenantID,
		VisitorID: visitorID,
		Status:    model.RoomStatusActive,
	}
}

func (s *stubChat) GetRoom(_ context.Context, tenantID, roomID string) (*model.RoomItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[model.RoomPK(tenantID, roomID)]
	if !ok {
		return nil, false, nil
	}
	return &room, true, nil
}

func (s *stubChat) PostMessage(_ context.Context, input chat.PostMessageInput) (*model.MessageItem, *model.RoomItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postErr != nil {
		return nil, nil, s.postErr
	}
	room, ok := s.rooms[model.RoomPK(input.TenantID, input.RoomID)]
	if !ok {
		return nil, nil, &chat.Error{Code: chat.ErrCodeNotFound, Message: "room not found"}
	}
	s.seq++
	msg := model.MessageItem{
		RoomID:     input.RoomID,
		MessageID:  "msg-1",
		Seq:        s.seq,
		SenderType: input.SenderType,
		StaffID:    input.StaffID,
		Content:    input.Content,
		CreatedAt:  time.Now().UTC().Format(model.TimeFormat),
	}
	if input.SenderType == model.SenderTypeVisitor {
		room.UnreadCount++
		s.rooms[room.PK] = room
	}
	s.order = append(s.order, input.Content)
	return &msg, &room, nil
}

func (s *stubChat) ListRoomMessages(_ context.Context, tenantID, roomID string, _ int, _ string) ([]model.MessageItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[model.RoomPK(tenantID, roomID)]; !ok {
		return nil, false, nil
	}
	return s.history, true, nil
}

func (s *stubChat) MarkRoomRead(_ context.Context, tenantID, roomID string, _ model.ParticipantType, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[model.RoomPK(tenantID, roomID)]; !ok {
		return 0, nil
	}
	return s.marked, nil
}

func (s *stubChat) UpsertStaffParticipant(_ context.Context, tenantID, roomID, _ string, _ bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[model.RoomPK(tenantID, roomID)]
	return ok, nil
}

func (s *stubChat) SetParticipantOnline(context.Context, string, model.ParticipantType, string, bool) error {
	return nil
}

type stubValidator struct{ ok bool }

func (s stubValidator) Validate(context.Context, string, string) (*model.WidgetCredentialItem, bool, error) {
	if s.ok {
		return &model.WidgetCredentialItem{}, true, nil
	}
	return nil, false, nil
}

func newTestGateway(svc ChatService) *Gateway {
	return New(svc, stubValidator{ok: true})
}

func newTestClient(g *Gateway, tenantID string, userType UserType, userID string) *Client {
	c := &Client{
		ID:       "client-" + userID,
		TenantID: tenantID,
		UserType: userType,
		UserID:   userID,
		send:     make(chan OutboundEvent, 16),
		gateway:  g,
		rooms:    make(map[string]bool),
	}
	if userType == UserTypeStaff {
		g.subscribe(tenantChannelID(tenantID), c)
	}
	return c
}

func waitEvent(t *testing.T, c *Client) OutboundEvent {
	t.Helper()
	select {
	case ev := <-c.send:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return OutboundEvent{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case ev := <-c.send:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinRoomSendsHistory(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	svc.history = []model.MessageItem{
		{RoomID: "room-1", MessageID: "m1", Content: "hello"},
		{RoomID: "room-1", MessageID: "m2", Content: "world"},
	}
	g := newTestGateway(svc)
	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")

	g.handleEvent(context.Background(), staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})

	ev := waitEvent(t, staff)
	if ev.Type != EventRoomMessages {
		t.Fatalf("type = %q, want %q", ev.Type, EventRoomMessages)
	}
	if len(ev.Messages) != 2 {
		t.Errorf("history = %d messages, want 2", len(ev.Messages))
	}
	if !staff.inRoom("room-1") {
		t.Error("client must track joined room")
	}
}

func TestJoinRoomCrossTenant(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	staff := newTestClient(g, "tenant-2", UserTypeStaff, "staff-1")

	g.handleEvent(context.Background(), staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})

	ev := waitEvent(t, staff)
	if ev.Type != EventError || ev.Code != "not_found" {
		t.Errorf("got %+v, want not_found error", ev)
	}
	if staff.inRoom("room-1") {
		t.Error("cross-tenant join must not register membership")
	}
}

func TestVisitorJoinForeignRoom(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	visitor := newTestClient(g, "tenant-1", UserTypeVisitor, "v-other")

	g.handleEvent(context.Background(), visitor, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})

	ev := waitEvent(t, visitor)
	if ev.Type != EventError || ev.Code != "not_found" {
		t.Errorf("got %+v, want not_found error", ev)
	}
}

func TestSendMessageBroadcast(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	ctx := context.Background()

	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")
	visitor := newTestClient(g, "tenant-1", UserTypeVisitor, "v-1")
	lurker := newTestClient(g, "tenant-1", UserTypeStaff, "staff-2")

	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)
	g.handleEvent(ctx, visitor, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, visitor)

	g.handleEvent(ctx, visitor, InboundEvent{Type: EventSendMessage, RoomID: "room-1", Content: "hello there"})

	ev := waitEvent(t, visitor)
	if ev.Type != EventNewMessage {
		t.Fatalf("type = %q, want %q", ev.Type, EventNewMessage)
	}
	if ev.Message == nil || ev.Message.Content != "hello there" {
		t.Errorf("message = %+v, want content 'hello there'", ev.Message)
	}

	// The room and tenant feeds run on separate channels, so the joined
	// staff member's two frames can arrive in either order.
	got := map[string]OutboundEvent{}
	for i := 0; i < 2; i++ {
		ev := waitEvent(t, staff)
		got[ev.Type] = ev
	}
	if _, ok := got[EventNewMessage]; !ok {
		t.Error("joined staff must receive the full message")
	}
	activity, ok := got[EventRoomActivity]
	if !ok {
		t.Fatal("joined staff must receive the tenant summary")
	}

	// Staff on the tenant feed only get a summary, never the message body.
	lurkerEv := waitEvent(t, lurker)
	for _, ev := range []OutboundEvent{activity, lurkerEv} {
		if ev.Type != EventRoomActivity {
			t.Fatalf("type = %q, want %q", ev.Type, EventRoomActivity)
		}
		if ev.Message != nil {
			t.Error("tenant feed must not carry the message body")
		}
		if ev.Preview != "hello there" {
			t.Errorf("preview = %q", ev.Preview)
		}
		if ev.UnreadCount != 1 {
			t.Errorf("unreadCount = %d, want 1", ev.UnreadCount)
		}
	}
}

func TestSendMessageRequiresJoin(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")

	g.handleEvent(context.Background(), staff, InboundEvent{Type: EventSendMessage, RoomID: "room-1", Content: "hi"})

	ev := waitEvent(t, staff)
	if ev.Type != EventError || ev.Code != "forbidden" {
		t.Errorf("got %+v, want forbidden error", ev)
	}
}

func TestSendMessageErrorKeepsConnection(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	ctx := context.Background()
	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")

	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)

	svc.postErr = &chat.Error{Code: chat.ErrCodeValidation, Message: "message content is required"}
	g.handleEvent(ctx, staff, InboundEvent{Type: EventSendMessage, RoomID: "room-1"})
	ev := waitEvent(t, staff)
	if ev.Type != EventError || ev.Code != "validation_error" {
		t.Fatalf("got %+v, want validation error", ev)
	}

	// The same connection keeps working after a failed event.
	svc.postErr = nil
	g.handleEvent(ctx, staff, InboundEvent{Type: EventSendMessage, RoomID: "room-1", Content: "retry"})
	ev = waitEvent(t, staff)
	if ev.Type != EventNewMessage {
		t.Errorf("type = %q, want %q after recovery", ev.Type, EventNewMessage)
	}
}

func TestTypingRelayExcludesSender(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	ctx := context.Background()

	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")
	visitor := newTestClient(g, "tenant-1", UserTypeVisitor, "v-1")
	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)
	g.handleEvent(ctx, visitor, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, visitor)

	g.handleEvent(ctx, visitor, InboundEvent{Type: EventTyping, RoomID: "room-1", Typing: true})

	ev := waitEvent(t, staff)
	if ev.Type != EventUserTyping || !ev.Typing || ev.UserID != "v-1" {
		t.Errorf("got %+v, want typing relay from v-1", ev)
	}
	assertNoEvent(t, visitor)
}

func TestMarkReadBroadcast(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	svc.marked = 3
	g := newTestGateway(svc)
	ctx := context.Background()

	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")
	visitor := newTestClient(g, "tenant-1", UserTypeVisitor, "v-1")
	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)
	g.handleEvent(ctx, visitor, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, visitor)

	g.handleEvent(ctx, staff, InboundEvent{Type: EventMarkRead, RoomID: "room-1"})

	ev := waitEvent(t, visitor)
	if ev.Type != EventMessagesRead || ev.ReadCount != 3 {
		t.Errorf("got %+v, want messages_read with count 3", ev)
	}
	assertNoEvent(t, staff)
}

func TestConcurrentSendersDeliverInStoredOrder(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	ctx := context.Background()

	observer := newTestClient(g, "tenant-1", UserTypeVisitor, "v-1")
	g.handleEvent(ctx, observer, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, observer)

	senders := []*Client{
		newTestClient(g, "tenant-1", UserTypeStaff, "staff-1"),
		newTestClient(g, "tenant-1", UserTypeStaff, "staff-2"),
	}
	for _, s := range senders {
		g.handleEvent(ctx, s, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
		waitEvent(t, s)
	}

	const perSender = 5
	var wg sync.WaitGroup
	for i, s := range senders {
		wg.Add(1)
		go func(i int, s *Client) {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				g.handleEvent(ctx, s, InboundEvent{
					Type:    EventSendMessage,
					RoomID:  "room-1",
					Content: fmt.Sprintf("sender%d-%d", i, j),
				})
			}
		}(i, s)
	}
	wg.Wait()

	total := perSender * len(senders)
	got := make([]string, 0, total)
	for len(got) < total {
		ev := waitEvent(t, observer)
		if ev.Type != EventNewMessage {
			t.Fatalf("type = %q, want %q", ev.Type, EventNewMessage)
		}
		got = append(got, ev.Message.Content)
	}

	svc.mu.Lock()
	want := append([]string(nil), svc.order...)
	svc.mu.Unlock()
	if len(want) != total {
		t.Fatalf("stored %d messages, want %d", len(want), total)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order diverges from stored order at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestMarkReadVisitorForbidden(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	svc.marked = 2
	g := newTestGateway(svc)
	ctx := context.Background()

	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")
	visitor := newTestClient(g, "tenant-1", UserTypeVisitor, "v-1")
	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)
	g.handleEvent(ctx, visitor, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, visitor)

	g.handleEvent(ctx, visitor, InboundEvent{Type: EventMarkRead, RoomID: "room-1"})

	ev := waitEvent(t, visitor)
	if ev.Type != EventError || ev.Code != "forbidden" {
		t.Errorf("got %+v, want forbidden error", ev)
	}
	assertNoEvent(t, staff)
}

func TestEmptyChannelsReaped(t *testing.T) {
	svc := newStubChat()
	svc.addRoom("tenant-1", "room-1", "v-1")
	g := newTestGateway(svc)
	ctx := context.Background()

	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")
	g.handleEvent(ctx, staff, InboundEvent{Type: EventJoinRoom, RoomID: "room-1"})
	waitEvent(t, staff)
	g.handleEvent(ctx, staff, InboundEvent{Type: EventSendMessage, RoomID: "room-1", Content: "hi"})
	waitEvent(t, staff)

	g.mu.RLock()
	channels, locks := len(g.channels), len(g.roomLocks)
	g.mu.RUnlock()
	if channels != 2 || locks != 1 {
		t.Fatalf("channels = %d locks = %d, want 2 and 1 while connected", channels, locks)
	}

	g.disconnect(staff)

	g.mu.RLock()
	channels, locks = len(g.channels), len(g.roomLocks)
	g.mu.RUnlock()
	if channels != 0 {
		t.Errorf("channels = %d, want all reaped after last disconnect", channels)
	}
	if locks != 0 {
		t.Errorf("room locks = %d, want reaped with the room channel", locks)
	}
}

func TestUnknownEventType(t *testing.T) {
	svc := newStubChat()
	g := newTestGateway(svc)
	staff := newTestClient(g, "tenant-1", UserTypeStaff, "staff-1")

	g.handleEvent(context.Background(), staff, InboundEvent{Type: "bogus"})

	ev := waitEvent(t, staff)
	if ev.Type != EventError || ev.Code != "unknown_event" {
		t.Errorf("got %+v, want unknown_event error", ev)
	}
}

func TestServeWSRefusesUnauthenticated(t *testing.T) {
	g := New(newStubChat(), stubValidator{ok: false})
	h := NewHandler(g)

	r := httptest.NewRequest("GET", "/connect?tenantId=tenant-1&publicKey=pk_bad", nil)
	w := httptest.NewRecorder()
	h.ServeWS(w, r)

	if w.Code != 401 {
		t.Errorf("status = %d, want 401 before any upgrade", w.Code)
	}
}

func TestServeWSRefusesBadToken(t *testing.T) {
	g := New(newStubChat(), stubValidator{ok: false})
	h := NewHandler(g)

	r := httptest.NewRequest("GET", "/connect", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	h.ServeWS(w, r)

	if w.Code != 401 {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
