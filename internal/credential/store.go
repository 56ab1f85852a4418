// Package credential holds the single user-supplied API key together with
// its cached validity flag and last validation time.
//
// A Store is created once at startup and passed explicitly to whatever needs
// it. It performs no network access; validating a key against the upstream
// provider is the key validator's job, and callers decide what to persist.
package credential

import (
	"context"
	"strings"

	"cosmic-chat/backend/internal/model"
)

// Status is the coarse state of the stored key as shown to the user.
type Status string

const (
	// StatusMissing means no key is stored.
	StatusMissing Status = "missing"
	// StatusStored means a key is stored and no validation has explicitly failed.
	StatusStored Status = "stored"
	// StatusInvalid means the last validation of the stored key failed.
	StatusInvalid Status = "invalid"
)

// Store persists one credential record.
type Store interface {
	// Set stores token, marks it provisionally valid and records the time.
	Set(ctx context.Context, token string) error
	// MarkInvalid records that the stored token explicitly failed validation.
	// It is a no-op when nothing is stored.
	MarkInvalid(ctx context.Context) error
	// Get returns the stored token; ok is false when none is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
	// Record returns the full stored record, or nil when none is stored.
	Record(ctx context.Context) (*model.Credential, error)
	// Clear removes the token and all of its validity metadata.
	Clear(ctx context.Context) error
	// Status reports missing, stored or invalid.
	Status(ctx context.Context) (Status, error)
}

// StatusOf derives the status of a record. A record that was never
// validated counts as stored, so keys saved before validation existed keep
// working.
func StatusOf(rec *model.Credential) Status {
	switch {
	case rec == nil || rec.Token == "":
		return StatusMissing
	case rec.Valid != nil && !*rec.Valid:
		return StatusInvalid
	default:
		return StatusStored
	}
}

// MaskKey masks a key for display, showing only the first and last 4 chars.
func MaskKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func boolPtr(b bool) *bool { return &b }
