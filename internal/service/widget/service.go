package widget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"
	"livechat-backend/utils"
)

const regenerateRetries = 3

// Service manages widget credentials, the public/secret key pairs embedded
// chat widgets authenticate with.
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

func (s *Service) timestamp() string {
	return s.now().UTC().Format(model.TimeFormat)
}

func (s *Service) newCredential(tenantID string) (model.WidgetCredentialItem, error) {
	publicKey, secretKey, err := utils.GenerateWidgetKeyPair()
	if err != nil {
		return model.WidgetCredentialItem{}, err
	}
	cred := model.WidgetCredentialItem{
		TenantID:  tenantID,
		KeyID:     uuid.NewString(),
		PublicKey: publicKey,
		SecretKey: secretKey,
		IsActive:  true,
		CreatedAt: s.timestamp(),
	}
	cred.PK = model.CredentialPK(tenantID, cred.KeyID)
	return cred, nil
}

// GetOrCreate returns the tenant's active credential, creating one when none
// exists. The boolean reports whether a new credential was created.
func (s *Service) GetOrCreate(ctx context.Context, tenantID string) (*model.WidgetCredentialItem, bool, error) {
	if tenantID == "" {
		return nil, false, newError(ErrCodeValidation, "tenant id is required", nil)
	}

	existing, err := s.repo.GetActiveByTenant(ctx, tenantID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, newError(ErrCodeInternal, "failed to load widget credential", err)
	}

	cred, err := s.newCredential(tenantID)
	if err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to generate widget keys", err)
	}
	if err := s.repo.PutCredential(ctx, cred); err != nil {
		return nil, false, newError(ErrCodeInternal, "failed to store widget credential", err)
	}
	return &cred, true, nil
}

// Validate authenticates a widget handshake. Any mismatch, an unknown key,
// an inactive or expired credential, or a key belonging to another tenant,
// yields (nil, false, nil) so callers cannot distinguish the failure modes.
func (s *Service) Validate(ctx context.Context, tenantID, publicKey string) (*model.WidgetCredentialItem, bool, error) {
	if tenantID == "" || publicKey == "" {
		return nil, false, nil
	}

	cred, err := s.repo.GetByPublicKey(ctx, publicKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, newError(ErrCodeInternal, "failed to look up widget credential", err)
	}

	if cred.TenantID != tenantID || !cred.IsActive {
		return nil, false, nil
	}
	if cred.ExpiresAt != "" && cred.ExpiresAt <= s.timestamp() {
		return nil, false, nil
	}

	// Usage tracking is best effort, a failed bump never blocks the
	// handshake.
	_ = s.repo.UpdateCredential(ctx, cred.TenantID, cred.KeyID, map[string]any{
		"lastUsedAt": s.timestamp(),
		"usageCount": cred.UsageCount + 1,
	})

	return cred, true, nil
}

// Regenerate atomically replaces the tenant's active credential. The old key
// stops validating in the same instant the new one starts. Concurrent
// regenerations retry against the fresh active credential, so exactly one
// credential stays active.
func (s *Service) Regenerate(ctx context.Context, tenantID string) (*model.WidgetCredentialItem, error) {
	if tenantID == "" {
		return nil, newError(ErrCodeValidation, "tenant id is required", nil)
	}

	for attempt := 0; attempt < regenerateRetries; attempt++ {
		old, err := s.repo.GetActiveByTenant(ctx, tenantID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, newError(ErrCodeInternal, "failed to load widget credential", err)
			}
			// Nothing to replace: regenerating without an active credential
			// is the first create. A concurrent creator wins the race and
			// the loop retries against its credential.
			cred, created, err := s.GetOrCreate(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			if created {
				return cred, nil
			}
			continue
		}

		next, err := s.newCredential(tenantID)
		if err != nil {
			return nil, newError(ErrCodeInternal, "failed to generate widget keys", err)
		}

		err = s.repo.SwapCredential(ctx, *old, next)
		if err == nil {
			return &next, nil
		}
		if errors.Is(err, ErrStaleCredential) {
			continue
		}
		return nil, newError(ErrCodeInternal, "failed to swap widget credential", err)
	}

	return nil, newError(ErrCodeConflict, "widget credential changed concurrently", nil)
}
