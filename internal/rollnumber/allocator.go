// Package rollnumber produces visitor-facing registration identifiers of
// the form {YYYYMMDD}{agentID}{4-digit suffix}.  Candidates are checked
// against the store that submissions are persisted to, so the allocator
// never hands out a number that is already on record.  The allocator
// itself reserves nothing: final uniqueness is enforced by the store at
// insert time, and submit re-allocates on conflict.
package rollnumber

import (
	"context"
	"math/rand"
	"strconv"
	"time"
)

// UsedSet answers whether a roll number is already persisted.  It is
// satisfied by repository.RegistrationStore.
type UsedSet interface {
	RollNumberExists(ctx context.Context, roll string) (bool, error)
}

// Allocator generates unique roll numbers for one agent.
type Allocator struct {
	agentID string
	used    UsedSet
	now     func() time.Time // injectable clock, day granularity
	intn    func(int) int    // injectable randomness for tests
}

// New returns an Allocator for the given agent, checking candidates
// against used.
func New(agentID string, used UsedSet) *Allocator {
	return &Allocator{
		agentID: agentID,
		used:    used,
		now:     time.Now,
		intn:    rand.Intn,
	}
}

// Allocate returns a roll number not currently present in the used set.
// On collision it draws a new suffix and re-checks; there is no retry
// cap since at most 9000 numbers exist per agent per day and the flow
// never approaches that volume.  Lookup errors propagate immediately
// rather than risking a duplicate.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	stamp := a.now().UTC().Format("20060102")
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := stamp + a.agentID + strconv.Itoa(1000+a.intn(9000))
		taken, err := a.used.RollNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}
