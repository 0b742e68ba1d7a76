package repository

import (
	"context"
	"database/sql"

	"github.com/fieldreg/member-registration/internal/model"
)

// ReferralRepo reads the pre-existing referral_codes table.  Referral
// rows are reference data maintained elsewhere; this repository never
// inserts, updates or deletes.
type ReferralRepo struct {
	db *sql.DB
}

// NewReferralRepo returns a ReferralRepo bound to the provided database.
func NewReferralRepo(db *sql.DB) *ReferralRepo { return &ReferralRepo{db: db} }

// Lookup fetches a referral by id.  Absent or inactive ids return
// ErrUnknownReferral so the entry page can render its notice without
// inspecting sql errors.
func (r *ReferralRepo) Lookup(ctx context.Context, refid string) (model.Referral, error) {
	var ref model.Referral
	err := r.db.QueryRowContext(ctx,
		"SELECT refid, name, is_active FROM referral_codes WHERE refid=? LIMIT 1",
		refid).Scan(&ref.RefID, &ref.Name, &ref.Active)
	if err == sql.ErrNoRows {
		return model.Referral{}, ErrUnknownReferral
	}
	if err != nil {
		return model.Referral{}, err
	}
	if !ref.Active {
		return model.Referral{}, ErrUnknownReferral
	}
	return ref, nil
}
