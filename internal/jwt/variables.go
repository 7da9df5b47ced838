package jwt

import (
	"time"

	"github.com/go-redis/redis/v8"

	"livechat-backend/internal/env"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// RoleSecrets maps the role character appended to every token onto the
// signing secret for that role. Tests override entries directly.
var RoleSecrets = map[Role]string{
	RoleStaff: env.Get(env.StaffSecretKey),
}

// RedisClient stores refresh tokens. Left nil when refresh is unused, e.g. in
// the websocket server and in tests.
var RedisClient *redis.Client

func InitRedis() {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     env.GetOrDefault(env.AuthRedisURL, "localhost:6379"),
		Password: env.Get(env.AuthRedisPass),
	})
}
