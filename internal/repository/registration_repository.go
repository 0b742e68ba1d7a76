package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/fieldreg/member-registration/internal/model"
)

// mysqlDupEntry is the MySQL error number raised when an insert violates
// a unique key (here: the UNIQUE KEY on registrations.roll_number).
const mysqlDupEntry = 1062

// RegistrationRepo provides data access to the registrations table.  It
// is the relational implementation of RegistrationStore: uniqueness of
// roll numbers is delegated to the database's unique key, so a lost
// check/insert race surfaces as ErrDuplicateRoll rather than a duplicate
// row.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo returns a RegistrationRepo bound to the provided database.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

// Insert persists a registration row.  Optional columns (civil_status,
// prs_date, refid) are stored as NULL when empty.  A duplicate roll
// number maps to ErrDuplicateRoll; all other errors pass through.
func (r *RegistrationRepo) Insert(ctx context.Context, reg *model.Registration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations
		   (roll_number, membership_type, family_name, first_name, middle_name,
		    gender, mobile_phone, email_address, birthday, address,
		    municipality, baranggay, province, zip, id_type,
		    selfie, id_front, id_back, agree_to_terms,
		    civil_status, prs_date, refid)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		reg.RollNumber, reg.MembershipType, reg.FamilyName, reg.FirstName, reg.MiddleName,
		reg.Gender, reg.MobilePhone, reg.EmailAddress, reg.Birthday, reg.Address,
		reg.Municipality, reg.Baranggay, reg.Province, reg.Zip, reg.IDType,
		reg.SelfiePath, reg.IDFrontPath, reg.IDBackPath, reg.AgreeToTerms,
		nullable(reg.CivilStatus), nullable(reg.PrsDate), nullable(reg.RefID))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ErrDuplicateRoll
		}
		return err
	}
	return nil
}

// RollNumberExists reports whether a roll number is already persisted.
// Scoped globally, not per day: the table holds every record ever
// written, which is exactly the uniqueness contract the allocator needs.
func (r *RegistrationRepo) RollNumberExists(ctx context.Context, roll string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM registrations WHERE roll_number=? LIMIT 1", roll).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// nullable converts an empty string to a NULL parameter.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
