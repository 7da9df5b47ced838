package staff

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"livechat-backend/internal/database"
	"livechat-backend/internal/jwt"
	"livechat-backend/internal/model"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// Authenticate verifies staff credentials. Unknown emails and wrong
// passwords return the same unauthorized error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*jwt.Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, newError(ErrCodeValidation, "email and password are required", nil)
	}

	item, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(ErrCodeUnauthorized, "invalid credentials", nil)
		}
		return nil, newError(ErrCodeInternal, "failed to load staff member", err)
	}

	if !jwt.ValidatePassword(item.PasswordHash, password) {
		return nil, newError(ErrCodeUnauthorized, "invalid credentials", nil)
	}

	return &jwt.Staff{ID: item.StaffID, TenantID: item.TenantID, Email: item.Email}, nil
}

type RegisterInput struct {
	TenantID string
	Email    string
	Name     string
	Password string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.StaffItem, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.TenantID == "" || input.Email == "" || input.Password == "" {
		return nil, newError(ErrCodeValidation, "tenant id, email and password are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, newError(ErrCodeValidation, "password must be at least 8 characters", nil)
	}

	_, err := s.repo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, newError(ErrCodeConflict, "email already registered", nil)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, newError(ErrCodeInternal, "failed to check existing staff", err)
	}

	hash, err := jwt.HashPassword(input.Password)
	if err != nil {
		return nil, newError(ErrCodeInternal, "failed to hash password", err)
	}

	item := model.StaffItem{
		TenantID:     input.TenantID,
		StaffID:      uuid.NewString(),
		Email:        input.Email,
		Name:         input.Name,
		Role:         "agent",
		Status:       "active",
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Format(model.TimeFormat),
	}
	item.PK = model.TenantScopedPK(input.TenantID, item.StaffID)

	if err := s.repo.Put(ctx, item); err != nil {
		return nil, newError(ErrCodeInternal, "failed to store staff member", err)
	}
	return &item, nil
}
