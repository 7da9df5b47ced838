package model

import "fmt"

func CredentialPK(tenantID, keyID string) string {
	return fmt.Sprintf("%s#%s", tenantID, keyID)
}

// WidgetCredentialItem is the public/secret key pair a tenant's embedded
// widget presents when opening anonymous visitor sessions. At most one item
// per tenant carries IsActive=true; regeneration swaps the flag and the new
// item inside a single transaction.
type WidgetCredentialItem struct {
	PK         string `dynamodbav:"pk"`
	TenantID   string `dynamodbav:"tenantId"`
	KeyID      string `dynamodbav:"keyId"`
	PublicKey  string `dynamodbav:"publicKey"`
	SecretKey  string `dynamodbav:"secretKey"`
	IsActive   bool   `dynamodbav:"isActive"`
	ExpiresAt  string `dynamodbav:"expiresAt,omitempty"`
	LastUsedAt string `dynamodbav:"lastUsedAt,omitempty"`
	UsageCount int    `dynamodbav:"usageCount"`
	CreatedAt  string `dynamodbav:"createdAt"`
}
