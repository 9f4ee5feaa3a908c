// Package consent drives the platform screen-capture consent flow.
package consent

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Intent is an opaque handle for one consent prompt.
type Intent struct {
	ID        string
	CreatedAt time.Time
}

// Payload is what an approved consent hands to the recording service.
type Payload struct {
	Grant   string
	Display string
}

// Result is the answer to a consent prompt.
type Result struct {
	Approved bool
	Payload  Payload
}

// Provider is the platform capture-consent subsystem.
type Provider interface {
	CreateCaptureIntent() Intent
	// Launch shows the consent prompt for intent and blocks until it is answered.
	Launch(ctx context.Context, intent Intent) (Result, error)
}

// NewIntent returns an intent with a fresh random ID.
func NewIntent() Intent {
	return Intent{ID: randomID(), CreatedAt: time.Now()}
}

func randomID() string {
	b := make([]byte, 8)
	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
