package dto

import "livechat-backend/internal/model"

// WidgetCredentialResponse exposes the secret key only when the credential
// was just created or regenerated.
type WidgetCredentialResponse struct {
	KeyID      string `json:"keyId"`
	PublicKey  string `json:"publicKey"`
	SecretKey  string `json:"secretKey,omitempty"`
	IsActive   bool   `json:"isActive"`
	LastUsedAt string `json:"lastUsedAt,omitempty"`
	UsageCount int    `json:"usageCount"`
	CreatedAt  string `json:"createdAt"`
}

func WidgetCredentialResponseFromItem(c model.WidgetCredentialItem, includeSecret bool) WidgetCredentialResponse {
	resp := WidgetCredentialResponse{
		KeyID:      c.KeyID,
		PublicKey:  c.PublicKey,
		IsActive:   c.IsActive,
		LastUsedAt: c.LastUsedAt,
		UsageCount: c.UsageCount,
		CreatedAt:  c.CreatedAt,
	}
	if includeSecret {
		resp.SecretKey = c.SecretKey
	}
	return resp
}
