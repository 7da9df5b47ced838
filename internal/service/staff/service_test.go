package staff

import (
	"context"
	"sync"
	"testing"
	"time"

	"livechat-backend/internal/model"
)

type fakeRepository struct {
	mu    sync.Mutex
	items map[string]model.StaffItem
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: make(map[string]model.StaffItem)}
}

func (f *fakeRepository) Put(_ context.Context, item model.StaffItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.PK] = item
	return nil
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*model.StaffItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.Email == email {
			out := item
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

var fixedNow = func() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewWithRepository(newFakeRepository(), fixedNow)
	ctx := context.Background()

	item, err := svc.Register(ctx, RegisterInput{
		TenantID: "tenant-1",
		Email:    "Agent@Example.com",
		Name:     "Agent",
		Password: "hunter2222",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if item.Email != "agent@example.com" {
		t.Errorf("email = %q, want normalized lowercase", item.Email)
	}
	if item.PasswordHash == "hunter2222" {
		t.Error("password must not be stored in plain text")
	}

	staff, err := svc.Authenticate(ctx, "agent@example.com", "hunter2222")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if staff.TenantID != "tenant-1" || staff.ID != item.StaffID {
		t.Errorf("staff = %+v", staff)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	svc := NewWithRepository(newFakeRepository(), fixedNow)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		TenantID: "tenant-1",
		Email:    "agent@example.com",
		Password: "hunter2222",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		code     ErrorCode
	}{
		{"wrong password", "agent@example.com", "wrong", ErrCodeUnauthorized},
		{"unknown email", "ghost@example.com", "hunter2222", ErrCodeUnauthorized},
		{"empty password", "agent@example.com", "", ErrCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc.email, tc.password)
			svcErr, ok := err.(*Error)
			if !ok || svcErr.Code != tc.code {
				t.Errorf("err = %v, want code %q", err, tc.code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewWithRepository(newFakeRepository(), fixedNow)
	ctx := context.Background()

	input := RegisterInput{TenantID: "tenant-1", Email: "agent@example.com", Password: "hunter2222"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(ctx, input)
	svcErr, ok := err.(*Error)
	if !ok || svcErr.Code != ErrCodeConflict {
		t.Errorf("err = %v, want conflict", err)
	}
}
