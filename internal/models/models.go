package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

const (
	SessionScheduled = "scheduled"
	SessionCancelled = "cancelled"
	SessionCompleted = "completed"
)

const (
	IntentAttending = "attending"
	IntentDeclined  = "declined"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                     json:"id"`
	Username     string    `gorm:"uniqueIndex:users_username_key;not null"  json:"username"`
	Email        string    `gorm:"uniqueIndex:users_email_key;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                                 json:"-"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	Role         string    `gorm:"not null;default:user"                    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken stores only the sha256 fingerprint of the opaque token;
// the raw value is returned to the client once and never persisted.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"                          json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex:refresh_tokens_token_hash_key;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"                                          json:"expires_at"`
	Revoked   bool      `gorm:"default:false"                                     json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Table struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"     json:"id"`
	GMID        uuid.UUID `gorm:"type:uuid;index;not null" json:"gm_id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	MaxPlayers  int       `gorm:"default:0"                json:"max_players"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableMembership is created only when the GM approves a join request.
type TableMembership struct {
	TableID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"table_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type TableRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	TableID   uuid.UUID `gorm:"type:uuid;index;not null"     json:"table_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"     json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `gorm:"not null;default:pending"     json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GameSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	TableID     uuid.UUID `gorm:"type:uuid;index;not null"  json:"table_id"`
	Title       string    `gorm:"not null"                  json:"title"`
	ScheduledAt time.Time `gorm:"not null"                  json:"scheduled_at"`
	DurationMin int       `gorm:"default:0"                 json:"duration_min"`
	Status      string    `gorm:"not null;default:scheduled" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SessionIntent struct {
	SessionID   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"session_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Status      string     `gorm:"not null"             json:"status"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
