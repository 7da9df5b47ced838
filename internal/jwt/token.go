package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"livechat-backend/utils"
)

var (
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrUnknownRole  = errors.New("jwt: unknown token role")
)

// CreateToken signs a staff token and appends the role character so the
// parser can pick the right secret without decoding first.
func CreateToken(role Role, staff Staff, ttl time.Duration) (string, error) {
	secret, ok := RoleSecrets[role]
	if !ok || secret == "" {
		return "", ErrUnknownRole
	}

	claims := jwt.MapClaims{
		"id":       staff.ID,
		"tenantId": staff.TenantID,
		"email":    staff.Email,
		"exp":      time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed + string(role), nil
}

func ParseToken(tokenString string) (*Staff, Role, error) {
	if len(tokenString) < 2 {
		return nil, "", ErrInvalidToken
	}

	role := Role(tokenString[len(tokenString)-1:])
	secret, ok := RoleSecrets[role]
	if !ok || secret == "" {
		return nil, "", ErrUnknownRole
	}

	raw := tokenString[:len(tokenString)-1]
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	tenantID, _ := claims["tenantId"].(string)
	email, _ := claims["email"].(string)
	if id == "" || tenantID == "" {
		return nil, "", ErrInvalidToken
	}

	return &Staff{ID: id, TenantID: tenantID, Email: email}, role, nil
}

// CreateTokenWithRefresh issues an access token plus a refresh token stored
// in redis for RefreshTokenTTL.
func CreateTokenWithRefresh(ctx context.Context, role Role, staff Staff) (*TokenResponse, error) {
	access, err := CreateToken(role, staff, AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	if RedisClient == nil {
		return &TokenResponse{AccessToken: access}, nil
	}

	refresh, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(staff)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh payload: %w", err)
	}
	if err := RedisClient.Set(ctx, refreshKey(role, refresh), payload, RefreshTokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshToken rotates a refresh token, invalidating the old one.
func RefreshToken(ctx context.Context, role Role, refresh string) (*TokenResponse, error) {
	if RedisClient == nil {
		return nil, errors.New("jwt: refresh store not configured")
	}

	key := refreshKey(role, refresh)
	payload, err := RedisClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, ErrInvalidToken
	}

	var staff Staff
	if err := json.Unmarshal(payload, &staff); err != nil {
		return nil, ErrInvalidToken
	}

	if err := RedisClient.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("failed to invalidate refresh token: %w", err)
	}

	return CreateTokenWithRefresh(ctx, role, staff)
}

func refreshKey(role Role, refresh string) string {
	return fmt.Sprintf("refresh:%s:%s", role, refresh)
}
