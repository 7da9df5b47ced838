package model

import "fmt"

// TimeFormat is RFC3339 with fixed-width nanoseconds. Stored timestamps sort
// correctly as strings, which plain RFC3339Nano does not guarantee ("…00Z"
// compares greater than "…00.5Z").
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const (
	RoomsTable             = "ChatRooms"
	MessagesTable          = "ChatMessages"
	ParticipantsTable      = "ChatParticipants"
	WidgetCredentialsTable = "WidgetCredentials"
	StaffTable             = "Staff"
)

type StaffItem struct {
	PK           string `dynamodbav:"pk"`
	TenantID     string `dynamodbav:"tenantId"`
	StaffID      string `dynamodbav:"staffId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	Role         string `dynamodbav:"role"`
	Status       string `dynamodbav:"status"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
}

func TenantScopedPK(tenantID, entityID string) string {
	return fmt.Sprintf("%s#%s", tenantID, entityID)
}
