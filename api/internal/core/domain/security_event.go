package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Security event kinds recorded by the request gates.
const (
	EventMissingToken   = "missing_or_malformed_token"
	EventInvalidToken   = "invalid_token"
	EventUnknownSubject = "unknown_subject"
	EventForbidden      = "forbidden"
)

// SecurityEvent is a diagnostic record of a rejected request. It never
// contains the presented token.
type SecurityEvent struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Kind       string    `json:"kind" db:"kind"`
	Reason     string    `json:"reason" db:"reason"`
	SubjectID  *int64    `json:"subject_id,omitempty" db:"subject_id"`
	Method     string    `json:"method" db:"method"`
	Path       string    `json:"path" db:"path"`
	RemoteAddr string    `json:"remote_addr" db:"remote_addr"`
	RequestID  string    `json:"request_id" db:"request_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SecurityEventRepository persists and lists security events.
type SecurityEventRepository interface {
	Record(ctx context.Context, event *SecurityEvent) error
	List(ctx context.Context, limit, offset int) ([]SecurityEvent, error)
	// DeleteBefore removes events created before cutoff and reports how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
