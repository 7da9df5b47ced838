package env

import (
	"fmt"
	"os"
)

const (
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	StaffSecretKey   = "STAFF_SECRET"
	AuthRedisURL     = "AUTH_REDIS_URL"
	AuthRedisPass    = "AUTH_REDIS_PASS"
	ChatRedisURL     = "CHAT_REDIS_URL"
	ChatRedisPass    = "CHAT_REDIS_PASS"
	WebURL           = "WEB_URL"
)

// Validate is called from each main before anything else touches the
// environment. Kept out of package init so tests never depend on process env.
func Validate(required ...string) error {
	for _, key := range required {
		if os.Getenv(key) == "" {
			return fmt.Errorf("env: required environment variable not set: %s", key)
		}
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
