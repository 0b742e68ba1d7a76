package repository

import (
	"context"

	"github.com/fieldreg/member-registration/internal/model"
)

// RegistrationStore is the persistence target for completed submissions.
// The roll number allocator checks candidates against the SAME store the
// submit handler inserts into, so the uniqueness view can never diverge
// from what actually gets written.  Implementations must enforce roll
// number uniqueness at insert time and return ErrDuplicateRoll on
// conflict; a read-only Exists check alone is not sufficient because two
// in-flight registrations may both pass it before either inserts.
type RegistrationStore interface {
	// Insert persists one registration.  Returns ErrDuplicateRoll when the
	// roll number is already taken.
	Insert(ctx context.Context, reg *model.Registration) error
	// RollNumberExists reports whether a roll number is already persisted.
	// Lookup failures propagate; callers must not treat an error as "free".
	RollNumberExists(ctx context.Context, roll string) (bool, error)
}

// ReferralStore looks up pre-existing referral codes.  It is read-only:
// this system never creates or mutates referral rows.
type ReferralStore interface {
	// Lookup returns the referral for refid, ErrUnknownReferral when the id
	// is absent or inactive, or a transport error.
	Lookup(ctx context.Context, refid string) (model.Referral, error)
}
