// Package session holds per-visitor registration progress for the
// duration of one attempt.  Sessions are keyed by an opaque token that
// travels to the browser inside a signed cookie; the data itself never
// leaves the server.
package session

import (
	"context"

	"github.com/fieldreg/member-registration/internal/model"
)

// Session is one visitor's progress through the flow.  Form is only ever
// populated after RollNumber is, and submit is only valid once Form is
// populated; the step gates in the middleware package enforce that
// ordering.
type Session struct {
	Started    bool                `json:"started"`
	RollNumber string              `json:"roll_number,omitempty"`
	RefID      string              `json:"refid,omitempty"`
	Form       *model.Registration `json:"form,omitempty"`
}

// Store abstracts session persistence so the backend can be swapped
// without touching handlers: in-memory for tests and single-node dev,
// Redis for production.  Implementations expire idle sessions on their
// own; Destroy is for deterministic teardown at submit.
type Store interface {
	// Get returns the session for token.  ok is false when the token is
	// unknown or expired.
	Get(ctx context.Context, token string) (Session, bool, error)
	// Set stores the session under token and resets its idle expiry.
	Set(ctx context.Context, token string, s Session) error
	// Destroy removes the session.  Unknown tokens are not an error.
	Destroy(ctx context.Context, token string) error
}
