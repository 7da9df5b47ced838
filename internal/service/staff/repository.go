package staff

import (
	"context"
	"errors"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"
)

var ErrNotFound = errors.New("staff: not found")

type Repository interface {
	Put(ctx context.Context, item model.StaffItem) error
	GetByEmail(ctx context.Context, email string) (*model.StaffItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) *DynamoRepository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Put(ctx context.Context, item model.StaffItem) error {
	return r.db.PutItem(ctx, model.StaffTable, item)
}

func (r *DynamoRepository) GetByEmail(ctx context.Context, email string) (*model.StaffItem, error) {
	var items []model.StaffItem
	if err := r.db.ScanItemsByField(ctx, model.StaffTable, "email", email, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}
