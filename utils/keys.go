package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	publicKeyPrefix = "pk_"
	secretKeyPrefix = "sk_"
)

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateWidgetKeyPair returns a public/secret key pair for widget
// authentication. The public key ships inside the embed snippet, the secret
// key is shown to the tenant once.
func GenerateWidgetKeyPair() (publicKey string, secretKey string, err error) {
	pub, err := randomHex(16)
	if err != nil {
		return "", "", err
	}
	sec, err := randomHex(32)
	if err != nil {
		return "", "", err
	}
	return publicKeyPrefix + pub, secretKeyPrefix + sec, nil
}

func GenerateRefreshToken() (string, error) {
	return randomHex(32)
}
