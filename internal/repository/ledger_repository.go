package repository

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fieldreg/member-registration/internal/model"
)

// ledgerHeader is the fixed first row of every ledger file.  The column
// order matches the historical export format consumed downstream and
// must not change.
const ledgerHeader = "Roll Number,Membership Type,Family Name,First Name,Middle Name,Gender,Mobile Phone,Email Address,Birthday,Address,Municipality,Baranggay,Province,Zip,ID Type,Selfie,ID Front,ID Back,Agree to Terms"

// LedgerRepo is the file-backed implementation of RegistrationStore.  It
// appends one CSV row per submission to a per-day, per-agent file named
// {YYYYMMDD}{agentID}.csv inside dir, writing the header when the file
// is created.
//
// All reads and writes are serialized under one mutex, which makes the
// duplicate check and the append a single atomic step.  That closes the
// check/insert race for this backend the same way the unique key does on
// MySQL.  The mutex only protects this process; the deployment model is
// one agent per ledger directory.
type LedgerRepo struct {
	dir     string
	agentID string
	mu      sync.Mutex
	now     func() time.Time // injectable for tests
}

// NewLedgerRepo returns a LedgerRepo writing under dir for the given agent.
func NewLedgerRepo(dir, agentID string) *LedgerRepo {
	return &LedgerRepo{dir: dir, agentID: agentID, now: time.Now}
}

// path returns today's ledger file path.
func (r *LedgerRepo) path() string {
	stamp := r.now().UTC().Format("20060102")
	return filepath.Join(r.dir, stamp+r.agentID+".csv")
}

// Insert appends a registration row to today's ledger.  The roll number
// is re-checked under the lock before appending and ErrDuplicateRoll is
// returned on conflict.
func (r *LedgerRepo) Insert(ctx context.Context, reg *model.Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path()
	taken, err := scanForRoll(path, reg.RollNumber)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateRoll
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(ledgerHeader + "\n"); err != nil {
			return err
		}
	}

	agree := "NO"
	if reg.AgreeToTerms {
		agree = "YES"
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{
		reg.RollNumber, reg.MembershipType, reg.FamilyName, reg.FirstName,
		reg.MiddleName, reg.Gender, reg.MobilePhone, reg.EmailAddress,
		reg.Birthday, reg.Address, reg.Municipality, reg.Baranggay,
		reg.Province, reg.Zip, reg.IDType,
		reg.SelfiePath, reg.IDFrontPath, reg.IDBackPath, agree,
	}); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// RollNumberExists reports whether a roll number appears in today's
// ledger.  Roll numbers embed their allocation date, so same-day scope
// is sufficient: numbers from different days can never be equal.
func (r *LedgerRepo) RollNumberExists(ctx context.Context, roll string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return scanForRoll(r.path(), roll)
}

// scanForRoll reads a ledger file and reports whether any row's first
// column equals roll.  A missing file means no rows yet.
func scanForRoll(path, roll string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1 // header and rows share the file
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if len(rec) > 0 && rec[0] == roll {
			return true, nil
		}
	}
}
