package model

import (
    "encoding/json"
    "errors"
    "time"
)

// ServiceType enumerates the kinds of offerings the catalog carries.
type ServiceType string

const (
    TypeTour ServiceType = "tour" // guided tour with a scheduled departure
    TypeRent ServiceType = "rent" // equipment or property rental slot
)

// ValidServiceType reports whether s is a known service type.
func ValidServiceType(s string) bool {
    switch ServiceType(s) {
    case TypeTour, TypeRent:
        return true
    }
    return false
}

// DateTimeLayout is the display format used on the wire for service
// datetimes ("13-07-2026 15:30").  All inbound datetime strings are parsed
// against this layout; anything else is a validation error.
const DateTimeLayout = "02-01-2006 15:04"

// ErrInvalidDateTime is returned when a datetime string does not match
// DateTimeLayout.
var ErrInvalidDateTime = errors.New("invalid datetime format, expected DD-MM-YYYY HH:MM")

// ParseDateTime converts a wire datetime string into a time.Time.
func ParseDateTime(s string) (time.Time, error) {
    t, err := time.Parse(DateTimeLayout, s)
    if err != nil {
        return time.Time{}, ErrInvalidDateTime
    }
    return t, nil
}

// FormatDateTime renders t using the wire layout.
func FormatDateTime(t time.Time) string {
    return t.Format(DateTimeLayout)
}

// Service mirrors the 'services' table.  Price is in the smallest currency
// unit.  MaxNumberPersons is the capacity ceiling enforced against the sum
// of booking headcounts.  The tuple (name, price, datetime,
// max_number_persons, type) is unique among active services to prevent
// duplicate listings.
type Service struct {
    GUID             string      `json:"guid"`
    Name             string      `json:"name"`
    Description      string      `json:"description"`
    Price            int64       `json:"price"`
    DateTime         time.Time   `json:"-"`
    Duration         string      `json:"duration"`
    MaxNumberPersons int         `json:"max_number_persons"`
    Type             ServiceType `json:"type"`
    IsDeleted        bool        `json:"is_deleted"`
    CreatedAt        time.Time   `json:"created_at"`
    UpdatedAt        time.Time   `json:"updated_at"`
}

// MarshalJSON renders the scheduled datetime in the wire display format
// instead of RFC3339, matching what clients send on create/update.
func (s Service) MarshalJSON() ([]byte, error) {
    type alias Service
    return json.Marshal(struct {
        alias
        DateTime string `json:"datetime"`
    }{alias(s), FormatDateTime(s.DateTime)})
}

