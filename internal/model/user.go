package model // package model defines the domain entities shared by repositories and handlers

import (
    "errors"
    "time"

    "github.com/nyaruka/phonenumbers" // phone parsing and international formatting
)

// UserRole enumerates the roles a user can hold.  Role membership is the
// only input to authorization decisions; there are no per-entity ACLs.
type UserRole string

const (
    RoleAdmin  UserRole = "admin"  // full access, including user administration
    RoleWorker UserRole = "worker" // staff: manages services and bookings
    RoleUser   UserRole = "user"   // regular customer
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
    switch UserRole(s) {
    case RoleAdmin, RoleWorker, RoleUser:
        return true
    }
    return false
}

// User mirrors the 'users' table.  Password holds the bcrypt hash and is
// nil for guest users created implicitly during booking; such users can
// never sign in.  Phone is stored normalized to international format and
// is the primary lookup key for walk-in customers.
type User struct {
    GUID       string    `json:"guid"`
    FirstName  *string   `json:"first_name"`
    LastName   *string   `json:"last_name"`
    MiddleName *string   `json:"middle_name"`
    Phone      string    `json:"phone"`
    Email      *string   `json:"email"`
    Password   *string   `json:"-"`
    Role       UserRole  `json:"role"`
    IsDeleted  bool      `json:"is_deleted"`
    CreatedAt  time.Time `json:"created_at"`
    UpdatedAt  time.Time `json:"updated_at"`
}

// Authenticatable reports whether the user has credentials to sign in.
// Guest users created during booking carry no password hash.
func (u *User) Authenticatable() bool {
    return u.Password != nil && *u.Password != ""
}

// ErrInvalidPhone is returned by NormalizePhone when the input cannot be
// parsed or does not describe a real, dialable number.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone parses a phone number in any common notation and returns
// it in international format.  Two syntactically different spellings of
// the same number (with or without a leading '+', with spaces or dashes)
// normalize to the identical string, which makes the phone column safe to
// use as a uniqueness key.  Numbers without an explicit country prefix are
// parsed against the "RU" region the schema was built for.
func NormalizePhone(raw string) (string, error) {
    num, err := phonenumbers.Parse(raw, "RU")
    if err != nil {
        return "", ErrInvalidPhone
    }
    if !phonenumbers.IsValidNumber(num) {
        return "", ErrInvalidPhone
    }
    return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), nil
}
