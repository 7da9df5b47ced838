package chat

import (
	"context"
	"errors"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"
)

var ErrNotFound = errors.New("chat: not found")

type Repository interface {
	PutRoom(ctx context.Context, room model.RoomItem) error
	GetRoom(ctx context.Context, tenantID, roomID string) (*model.RoomItem, error)
	ListRoomsByTenant(ctx context.Context, tenantID string) ([]model.RoomItem, error)
	UpdateRoom(ctx context.Context, tenantID, roomID string, updates map[string]any) error

	PutMessage(ctx context.Context, msg model.MessageItem) error
	ListMessagesByRoom(ctx context.Context, roomID string) ([]model.MessageItem, error)
	UpdateMessage(ctx context.Context, roomID, messageID string, updates map[string]any) error

	PutParticipant(ctx context.Context, p model.ParticipantItem) error
	GetParticipant(ctx context.Context, roomID string, kind model.ParticipantType, principalID string) (*model.ParticipantItem, error)
	ListParticipantsByRoom(ctx context.Context, roomID string) ([]model.ParticipantItem, error)
	UpdateParticipant(ctx context.Context, roomID string, kind model.ParticipantType, principalID string, updates map[string]any) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) *DynamoRepository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) PutRoom(ctx context.Context, room model.RoomItem) error {
	return r.db.PutItem(ctx, model.RoomsTable, room)
}

func (r *DynamoRepository) GetRoom(ctx context.Context, tenantID, roomID string) (*model.RoomItem, error) {
	var room model.RoomItem
	found, err := r.db.GetItem(ctx, model.RoomsTable, model.RoomPK(tenantID, roomID), &room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (r *DynamoRepository) ListRoomsByTenant(ctx context.Context, tenantID string) ([]model.RoomItem, error) {
	var rooms []model.RoomItem
	if err := r.db.ScanItemsByField(ctx, model.RoomsTable, "tenantId", tenantID, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *DynamoRepository) UpdateRoom(ctx context.Context, tenantID, roomID string, updates map[string]any) error {
	return r.db.UpdateItem(ctx, model.RoomsTable, model.RoomPK(tenantID, roomID), updates)
}

func (r *DynamoRepository) PutMessage(ctx context.Context, msg model.MessageItem) error {
	return r.db.PutItem(ctx, model.MessagesTable, msg)
}

func (r *DynamoRepository) ListMessagesByRoom(ctx context.Context, roomID string) ([]model.MessageItem, error) {
	var msgs []model.MessageItem
	if err := r.db.ScanItemsByField(ctx, model.MessagesTable, "roomId", roomID, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *DynamoRepository) UpdateMessage(ctx context.Context, roomID, messageID string, updates map[string]any) error {
	return r.db.UpdateItem(ctx, model.MessagesTable, model.MessagePK(roomID, messageID), updates)
}

func (r *DynamoRepository) PutParticipant(ctx context.Context, p model.ParticipantItem) error {
	return r.db.PutItem(ctx, model.ParticipantsTable, p)
}

func (r *DynamoRepository) GetParticipant(ctx context.Context, roomID string, kind model.ParticipantType, principalID string) (*model.ParticipantItem, error) {
	var p model.ParticipantItem
	found, err := r.db.GetItem(ctx, model.ParticipantsTable, model.ParticipantPK(roomID, kind, principalID), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *DynamoRepository) ListParticipantsByRoom(ctx context.Context, roomID string) ([]model.ParticipantItem, error) {
	var parts []model.ParticipantItem
	if err := r.db.ScanItemsByField(ctx, model.ParticipantsTable, "roomId", roomID, &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (r *DynamoRepository) UpdateParticipant(ctx context.Context, roomID string, kind model.ParticipantType, principalID string, updates map[string]any) error {
	return r.db.UpdateItem(ctx, model.ParticipantsTable, model.ParticipantPK(roomID, kind, principalID), updates)
}
