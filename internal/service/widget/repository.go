package widget

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"livechat-backend/internal/database"
	"livechat-backend/internal/model"
)

var (
	ErrNotFound = errors.New("widget: not found")

	// ErrStaleCredential signals that the active credential changed between
	// read and swap. Callers retry with a fresh read.
	ErrStaleCredential = errors.New("widget: active credential changed")
)

type Repository interface {
	PutCredential(ctx context.Context, cred model.WidgetCredentialItem) error
	GetActiveByTenant(ctx context.Context, tenantID string) (*model.WidgetCredentialItem, error)
	GetByPublicKey(ctx context.Context, publicKey string) (*model.WidgetCredentialItem, error)
	UpdateCredential(ctx context.Context, tenantID, keyID string, updates map[string]any) error

	// SwapCredential atomically deactivates old and stores next. It fails
	// with ErrStaleCredential when old is no longer the active credential.
	SwapCredential(ctx context.Context, old, next model.WidgetCredentialItem) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) *DynamoRepository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) PutCredential(ctx context.Context, cred model.WidgetCredentialItem) error {
	return r.db.PutItem(ctx, model.WidgetCredentialsTable, cred)
}

func (r *DynamoRepository) GetActiveByTenant(ctx context.Context, tenantID string) (*model.WidgetCredentialItem, error) {
	var creds []model.WidgetCredentialItem
	if err := r.db.ScanItemsByField(ctx, model.WidgetCredentialsTable, "tenantId", tenantID, &creds); err != nil {
		return nil, err
	}

	var newest *model.WidgetCredentialItem
	for i := range creds {
		c := &creds[i]
		if !c.IsActive {
			continue
		}
		if newest == nil || c.CreatedAt > newest.CreatedAt {
			newest = c
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	return newest, nil
}

func (r *DynamoRepository) GetByPublicKey(ctx context.Context, publicKey string) (*model.WidgetCredentialItem, error) {
	var creds []model.WidgetCredentialItem
	if err := r.db.ScanItemsByField(ctx, model.WidgetCredentialsTable, "publicKey", publicKey, &creds); err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, ErrNotFound
	}
	return &creds[0], nil
}

func (r *DynamoRepository) UpdateCredential(ctx context.Context, tenantID, keyID string, updates map[string]any) error {
	return r.db.UpdateItem(ctx, model.WidgetCredentialsTable, model.CredentialPK(tenantID, keyID), updates)
}

func (r *DynamoRepository) SwapCredential(ctx context.Context, old, next model.WidgetCredentialItem) error {
	nextAV, err := attributevalue.MarshalMap(next)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: aws.String(model.WidgetCredentialsTable),
				Item:      nextAV,
			},
		},
		{
			Update: &types.Update{
				TableName: aws.String(model.WidgetCredentialsTable),
				Key: map[string]types.AttributeValue{
					"pk": &types.AttributeValueMemberS{Value: old.PK},
				},
				UpdateExpression:    aws.String("SET isActive = :false"),
				ConditionExpression: aws.String("isActive = :true"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":false": &types.AttributeValueMemberBOOL{Value: false},
					":true":  &types.AttributeValueMemberBOOL{Value: true},
				},
			},
		},
	}

	if err := r.db.TransactWriteItems(ctx, items); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrStaleCredential
				}
			}
		}
		return err
	}
	return nil
}
