// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrDuplicateRoll indicates that a roll number lost the race
// between its uniqueness check and the final insert, so the caller
// should allocate a fresh number and try again.
package repository

import "errors"

// ErrDuplicateRoll is returned by RegistrationStore.Insert when the
// record's roll number already exists in the persistence target.
// Handlers react by re-allocating and retrying, never by surfacing the
// collision to the visitor.
var ErrDuplicateRoll = errors.New("duplicate roll number")

// ErrUnknownReferral is returned when a referral id is not present in
// the referral_codes table or is no longer active. The entry page
// translates this into an "invalid referral" notice, not an error page.
var ErrUnknownReferral = errors.New("unknown referral id")
