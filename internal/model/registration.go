package model

import "time"

// Registration is one completed submission as stored in the
// `registrations` table (or one ledger row on the CSV backend).  Each
// field corresponds to a column.  The json tags are omitted because these
// structs are used internally by the repository layer; handlers render
// HTML views rather than JSON.
//
// Fields:
//  RollNumber     – unique visitor-facing identifier ({YYYYMMDD}{agent}{4 digits}).
//  MembershipType – membership tier selected on the form.
//  FamilyName     – required surname.
//  FirstName      – required given name.
//  MiddleName     – optional middle name.
//  Gender         – self-reported gender.
//  MobilePhone    – contact number.
//  EmailAddress   – contact email.
//  Birthday       – date of birth as entered (YYYY-MM-DD).
//  Address        – street address line.
//  Municipality   – municipality or city.
//  Baranggay      – optional barangay.
//  Province       – province.
//  Zip            – optional postal code.
//  IDType         – kind of identity document presented.
//  SelfiePath     – stored path of the selfie image, empty if not uploaded.
//  IDFrontPath    – stored path of the ID front image.
//  IDBackPath     – stored path of the ID back image.
//  AgreeToTerms   – whether the terms checkbox was ticked.
//  CivilStatus    – optional civil status.
//  PrsDate        – optional registration date as entered.
//  RefID          – optional referral id attached from the session.
//  CreatedAt      – timestamp of persistence (db backend only).
type Registration struct {
	RollNumber     string    // registrations.roll_number (UNIQUE KEY)
	MembershipType string    // registrations.membership_type
	FamilyName     string    // registrations.family_name
	FirstName      string    // registrations.first_name
	MiddleName     string    // registrations.middle_name
	Gender         string    // registrations.gender
	MobilePhone    string    // registrations.mobile_phone
	EmailAddress   string    // registrations.email_address
	Birthday       string    // registrations.birthday
	Address        string    // registrations.address
	Municipality   string    // registrations.municipality
	Baranggay      string    // registrations.baranggay
	Province       string    // registrations.province
	Zip            string    // registrations.zip
	IDType         string    // registrations.id_type
	SelfiePath     string    // registrations.selfie
	IDFrontPath    string    // registrations.id_front
	IDBackPath     string    // registrations.id_back
	AgreeToTerms   bool      // registrations.agree_to_terms
	CivilStatus    string    // registrations.civil_status (nullable)
	PrsDate        string    // registrations.prs_date (nullable)
	RefID          string    // registrations.refid (nullable)
	CreatedAt      time.Time // registrations.created_at
}

// Referral is a row in the pre-existing `referral_codes` table.  This
// system only ever reads it: referral ids arrive base64-encoded on the
// entry page and are checked for existence and active state.
//
// Fields:
//  RefID  – referral identifier, primary key.
//  Name   – display name of the referring party.
//  Active – whether the code is still accepted.
type Referral struct {
	RefID  string // referral_codes.refid
	Name   string // referral_codes.name
	Active bool   // referral_codes.is_active
}
