package chat

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"
)

const (
	maxContentLength = 4000
	defaultPageSize  = 50
	maxPageSize      = 200
)

// Service owns rooms, messages and participants for the chat core. All
// lookups are tenant scoped; an id belonging to another tenant behaves like a
// missing one.
type Service struct {
	repo Repository
	now  func() time.Time
	seq  atomic.Int64
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(model.TimeFormat)
}

type CreateRoomInput struct {
	VisitorID    string
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Title        string
	Metadata     map[string]string
}

// CreateOrResumeRoom returns the visitor's newest active room when one
// exists, otherwise it creates a fresh room. The second return reports
// whether an existing room was resumed.
func (s *Service) CreateOrResumeRoom(ctx context.Context, tenantID string, input CreateRoomInput) (*model.RoomItem, bool, error) {
	if tenantID == "" {
		return nil, false, newError(ErrCodeValidation, "tenant id is required", nil)
	}

	if input.VisitorID != "" {
		existing, err := s.findActiveVisitorRoom(ctx, tenantID, input.VisitorID)
		if err != nil {
			return nil, false, newError(ErrCodeInternal, "failed to look up visitor rooms", err)
		}
		if existing != nil {
			if err := s.refreshContact(ctx, existing, input); err != nil {
				return nil, false, err
			}
			return existing, true, nil
		}
	}

	now := s.timestamp()
	visitorID := input.VisitorID
	if visitorID == "" {
		visitorID = uuid.NewString()
	}

	room := model.RoomItem{
		RoomID:       uuid.NewString(),
		TenantID:     tenantID,
		Title:        input.Title,
		Status:       model.RoomStatusActive,
		VisitorID:    visitorID,
		VisitorName:  input.VisitorName,
		VisitorEmail: input.VisitorEmail,
		VisitorPhone: input.VisitorPhone,
		Metadata:     input.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	room.PK = model.RoomPK(tenantID, room.RoomID)

	if err := s.repo.PutRoom(ctx, room); err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to create room", err)
	}

	participant := model.ParticipantItem{
		PK:              model.ParticipantPK(room.RoomID, model.ParticipantTypeVisitor, visitorID),
		RoomID:          room.RoomID,
		ParticipantType: model.ParticipantTypeVisitor,
		VisitorID:       visitorID,
		LastSeenAt:      now,
	}
	if err := s.repo.PutParticipant(ctx, participant); err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to register visitor participant", err)
	}

	return &room, false, nil
}

// refreshContact carries newer contact details onto a resumed room.
func (s *Service) refreshContact(ctx context.Context, room *model.RoomItem, input CreateRoomInput) error {
	updates := map[string]any{}
	if input.VisitorName != "" && input.VisitorName != room.VisitorName {
		room.VisitorName = input.VisitorName
		updates["visitorName"] = input.VisitorName
	}
	if input.VisitorEmail != "" && input.VisitorEmail != room.VisitorEmail {
		room.VisitorEmail = input.VisitorEmail
		updates["visitorEmail"] = input.VisitorEmail
	}
	if input.VisitorPhone != "" && input.VisitorPhone != room.VisitorPhone {
		room.VisitorPhone = input.VisitorPhone
		updates["visitorPhone"] = input.VisitorPhone
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updatedAt"] = s.timestamp()
	if err := s.repo.UpdateRoom(ctx, room.TenantID, room.RoomID, updates); err != nil {
		return newError(ErrCodeInternal, "failed to update visitor contact", err)
	}
	return nil
}

func (s *Service) findActiveVisitorRoom(ctx context.Context, tenantID, visitorID string) (*model.RoomItem, error) {
	rooms, err := s.repo.ListRoomsByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var newest *model.RoomItem
	for i := range rooms {
		r := &rooms[i]
		if r.VisitorID != visitorID || r.Status != model.RoomStatusActive {
			continue
		}
		if newest == nil || r.CreatedAt > newest.CreatedAt {
			newest = r
		}
	}
	return newest, nil
}

// GetRoom returns (nil, false, nil) when the room does not exist under the
// given tenant, including ids that belong to a different tenant.
func (s *Service) GetRoom(ctx context.Context, tenantID, roomID string) (*model.RoomItem, bool, error) {
	if tenantID == "" || roomID == "" {
		return nil, false, newError(ErrCodeValidation, "tenant id and room id are required", nil)
	}

	room, err := s.repo.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, newError(ErrCodeInternal, "failed to load room", err)
	}
	return room, true, nil
}

type ListRoomsFilter struct {
	Status model.RoomStatus
	Search string
	Limit  int
	Offset int
}

// ListRooms returns the tenant's rooms sorted by latest activity, plus the
// total count before pagination.
func (s *Service) ListRooms(ctx context.Context, tenantID string, filter ListRoomsFilter) ([]model.RoomItem, int, error) {
	if tenantID == "" {
		return nil, 0, newError(ErrCodeValidation, "tenant id is required", nil)
	}
	if filter.Status != "" && !validRoomStatus(filter.Status) {
		return nil, 0, newError(ErrCodeValidation, "unknown room status", nil)
	}

	rooms, err := s.repo.ListRoomsByTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, newError(ErrCodeInternal, "failed to list rooms", err)
	}

	search := strings.ToLower(filter.Search)
	filtered := rooms[:0:0]
	for _, r := range rooms {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if search != "" && !roomMatches(r, search) {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return roomActivity(filtered[i]) > roomActivity(filtered[j])
	})

	total := len(filtered)
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []model.RoomItem{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

func roomMatches(r model.RoomItem, search string) bool {
	for _, field := range []string{r.Title, r.VisitorName, r.VisitorEmail} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func roomActivity(r model.RoomItem) string {
	if r.LastMessageAt != "" {
		return r.LastMessageAt
	}
	return r.CreatedAt
}

func validRoomStatus(status model.RoomStatus) bool {
	switch status {
	case model.RoomStatusActive, model.RoomStatusClosed, model.RoomStatusArchived:
		return true
	}
	return false
}

type PostMessageInput struct {
	TenantID    string
	RoomID      string
	SenderType  model.SenderType
	StaffID     string
	MessageType model.MessageType
	Content     string
	FileURL     string
	FileName    string
	FileSize    int64
	Metadata    map[string]string
}

// PostMessage persists a message and applies the room side effects, bumping
// lastMessageAt and the unread counters of everyone but the sender. It
// returns the stored message together with the room state after the update.
func (s *Service) PostMessage(ctx context.Context, input PostMessageInput) (*model.MessageItem, *model.RoomItem, error) {
	if err := validatePostMessage(input); err != nil {
		return nil, nil, err
	}

	room, err := s.repo.GetRoom(ctx, input.TenantID, input.RoomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, newError(ErrCodeNotFound, "room not found", nil)
		}
		return nil, nil, newError(ErrCodeInternal, "failed to load room", err)
	}
	if room.Status == model.RoomStatusArchived {
		return nil, nil, newError(ErrCodeConflict, "room is archived", nil)
	}

	messageType := input.MessageType
	if messageType == "" {
		messageType = model.MessageTypeText
	}

	now := s.timestamp()
	msg := model.MessageItem{
		TenantID:    input.TenantID,
		RoomID:      input.RoomID,
		MessageID:   uuid.NewString(),
		Seq:         s.seq.Add(1),
		SenderType:  input.SenderType,
		StaffID:     input.StaffID,
		MessageType: messageType,
		Content:     input.Content,
		FileURL:     input.FileURL,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		Metadata:    input.Metadata,
		CreatedAt:   now,
	}
	msg.PK = model.MessagePK(msg.RoomID, msg.MessageID)

	// Staff and system messages start out read; only visitor messages wait
	// for a staff read.
	if input.SenderType != model.SenderTypeVisitor {
		msg.IsRead = true
		msg.ReadAt = now
	}

	if err := s.repo.PutMessage(ctx, msg); err != nil {
		return nil, nil, newError(ErrCodeInternal, "failed to store message", err)
	}

	updates := map[string]any{
		"lastMessageAt": now,
		"updatedAt":     now,
	}
	room.LastMessageAt = now
	room.UpdatedAt = now
	if input.SenderType == model.SenderTypeVisitor {
		room.UnreadCount++
		updates["unreadCount"] = room.UnreadCount
	}
	if err := s.repo.UpdateRoom(ctx, input.TenantID, input.RoomID, updates); err != nil {
		return nil, nil, newError(ErrCodeInternal, "failed to update room activity", err)
	}

	s.bumpParticipantUnread(ctx, input.RoomID, input.SenderType, input.StaffID, room.VisitorID)

	return &msg, room, nil
}

func validatePostMessage(input PostMessageInput) error {
	if input.TenantID == "" || input.RoomID == "" {
		return newError(ErrCodeValidation, "tenant id and room id are required", nil)
	}
	switch input.SenderType {
	case model.SenderTypeStaff:
		if input.StaffID == "" {
			return newError(ErrCodeValidation, "staff sender requires a staff id", nil)
		}
	case model.SenderTypeVisitor, model.SenderTypeSystem:
	default:
		return newError(ErrCodeValidation, "unknown sender type", nil)
	}
	switch input.MessageType {
	case "", model.MessageTypeText, model.MessageTypeSystem:
		if input.Content == "" {
			return newError(ErrCodeValidation, "message content is required", nil)
		}
	case model.MessageTypeFile:
		if input.FileURL == "" {
			return newError(ErrCodeValidation, "file message requires a file url", nil)
		}
	default:
		return newError(ErrCodeValidation, "unknown message type", nil)
	}
	if len(input.Content) > maxContentLength {
		return newError(ErrCodeValidation, "message content too long", nil)
	}
	return nil
}

// bumpParticipantUnread is best effort. A failed counter bump must not fail
// the already persisted message.
func (s *Service) bumpParticipantUnread(ctx context.Context, roomID string, sender model.SenderType, staffID, visitorID string) {
	participants, err := s.repo.ListParticipantsByRoom(ctx, roomID)
	if err != nil {
		return
	}
	for _, p := range participants {
		if sender == model.SenderTypeStaff && p.ParticipantType == model.ParticipantTypeStaff && p.StaffID == staffID {
			continue
		}
		if sender == model.SenderTypeVisitor && p.ParticipantType == model.ParticipantTypeVisitor && p.VisitorID == visitorID {
			continue
		}
		principalID := p.StaffID
		if p.ParticipantType == model.ParticipantTypeVisitor {
			principalID = p.VisitorID
		}
		_ = s.repo.UpdateParticipant(ctx, roomID, p.ParticipantType, principalID, map[string]any{
			"unreadCount": p.UnreadCount + 1,
		})
	}
}

// ListRoomMessages returns the room's messages in chronological order. The
// boolean reports room ownership; a miss (including another tenant's room)
// yields (nil, false, nil).
func (s *Service) ListRoomMessages(ctx context.Context, tenantID, roomID string, limit int, before string) ([]model.MessageItem, bool, error) {
	_, found, err := s.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	msgs, err := s.repo.ListMessagesByRoom(ctx, roomID)
	if err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to list messages", err)
	}

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt != msgs[j].CreatedAt {
			return msgs[i].CreatedAt < msgs[j].CreatedAt
		}
		return msgs[i].Seq < msgs[j].Seq
	})

	if before != "" {
		cut := len(msgs)
		for i, m := range msgs {
			if m.CreatedAt >= before {
				cut = i
				break
			}
		}
		msgs = msgs[:cut]
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, true, nil
}

// MarkRoomRead marks the counterpart's unread messages as read and resets the
// reader's unread counters. Unknown rooms are a no-op returning zero.
func (s *Service) MarkRoomRead(ctx context.Context, tenantID, roomID string, reader model.ParticipantType, readerID string) (int, error) {
	if reader != model.ParticipantTypeStaff && reader != model.ParticipantTypeVisitor {
		return 0, newError(ErrCodeValidation, "unknown participant type", nil)
	}

	_, found, err := s.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	msgs, err := s.repo.ListMessagesByRoom(ctx, roomID)
	if err != nil {
		return 0, newError(ErrCodeInternal, "failed to list messages", err)
	}

	now := s.timestamp()
	marked := 0
	for _, m := range msgs {
		if m.IsRead || !sentByCounterpart(m.SenderType, reader) {
			continue
		}
		err := s.repo.UpdateMessage(ctx, roomID, m.MessageID, map[string]any{
			"isRead": true,
			"readAt": now,
		})
		if err != nil {
			return marked, newError(ErrCodeInternal, "failed to mark message read", err)
		}
		marked++
	}

	if reader == model.ParticipantTypeStaff {
		err := s.repo.UpdateRoom(ctx, tenantID, roomID, map[string]any{
			"unreadCount": 0,
			"updatedAt":   now,
		})
		if err != nil {
			return marked, newError(ErrCodeInternal, "failed to reset room unread count", err)
		}
	}

	if readerID != "" {
		_ = s.repo.UpdateParticipant(ctx, roomID, reader, readerID, map[string]any{
			"unreadCount": 0,
			"lastSeenAt":  now,
		})
	}

	return marked, nil
}

func sentByCounterpart(sender model.SenderType, reader model.ParticipantType) bool {
	switch reader {
	case model.ParticipantTypeStaff:
		return sender != model.SenderTypeStaff
	case model.ParticipantTypeVisitor:
		return sender != model.SenderTypeVisitor
	}
	return false
}

// UpdateRoomStatus transitions a room between active, closed and archived.
func (s *Service) UpdateRoomStatus(ctx context.Context, tenantID, roomID string, status model.RoomStatus) (*model.RoomItem, bool, error) {
	if !validRoomStatus(status) {
		return nil, false, newError(ErrCodeValidation, "unknown room status", nil)
	}

	room, found, err := s.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	now := s.timestamp()
	err = s.repo.UpdateRoom(ctx, tenantID, roomID, map[string]any{
		"status":    status,
		"updatedAt": now,
	})
	if err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to update room status", err)
	}

	room.Status = status
	room.UpdatedAt = now
	return room, true, nil
}

// UpsertStaffParticipant records a staff member joining a room. The boolean
// reports whether the room exists under the tenant.
func (s *Service) UpsertStaffParticipant(ctx context.Context, tenantID, roomID, staffID string, online bool) (bool, error) {
	if staffID == "" {
		return false, newError(ErrCodeValidation, "staff id is required", nil)
	}

	_, found, err := s.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	now := s.timestamp()
	existing, err := s.repo.GetParticipant(ctx, roomID, model.ParticipantTypeStaff, staffID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, newError(ErrCodeInternal, "failed to load participant", err)
	}

	if existing != nil {
		err := s.repo.UpdateParticipant(ctx, roomID, model.ParticipantTypeStaff, staffID, map[string]any{
			"isOnline":   online,
			"lastSeenAt": now,
		})
		if err != nil {
			return false, newError(ErrCodeInternal, "failed to update participant", err)
		}
		return true, nil
	}

	p := model.ParticipantItem{
		PK:              model.ParticipantPK(roomID, model.ParticipantTypeStaff, staffID),
		RoomID:          roomID,
		ParticipantType: model.ParticipantTypeStaff,
		StaffID:         staffID,
		IsOnline:        online,
		LastSeenAt:      now,
	}
	if err := s.repo.PutParticipant(ctx, p); err != nil {
		return false, newError(ErrCodeInternal, "failed to register participant", err)
	}
	return true, nil
}

// SetParticipantOnline flips a participant's presence flag. Unknown
// participants are ignored.
func (s *Service) SetParticipantOnline(ctx context.Context, roomID string, kind model.ParticipantType, principalID string, online bool) error {
	if principalID == "" {
		return nil
	}
	_, err := s.repo.GetParticipant(ctx, roomID, kind, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return newError(ErrCodeInternal, "failed to load participant", err)
	}
	err = s.repo.UpdateParticipant(ctx, roomID, kind, principalID, map[string]any{
		"isOnline":   online,
		"lastSeenAt": s.timestamp(),
	})
	if err != nil {
		return newError(ErrCodeInternal, "failed to update participant presence", err)
	}
	return nil
}

// ListParticipants returns the room's participants. The boolean reports room
// ownership under the tenant.
func (s *Service) ListParticipants(ctx context.Context, tenantID, roomID string) ([]model.ParticipantItem, bool, error) {
	_, found, err := s.GetRoom(ctx, tenantID, roomID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	parts, err := s.repo.ListParticipantsByRoom(ctx, roomID)
	if err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to list participants", err)
	}
	return parts, true, nil
}
