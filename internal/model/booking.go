package model

import "time"

// BookingStatus enumerates the booking lifecycle states.  The enum is
// flat: any valid value may be written by a status update, and the caller
// may supply the initial status at creation time.
type BookingStatus string

const (
    StatusPending   BookingStatus = "pending"
    StatusConfirmed BookingStatus = "confirmed"
    StatusCancelled BookingStatus = "cancelled"
)

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
    switch BookingStatus(s) {
    case StatusPending, StatusConfirmed, StatusCancelled:
        return true
    }
    return false
}

// Booking mirrors the 'bookings' table.  UserGUID identifies the attendee
// the booking is for; UserCreated/UserUpdated record the actor who
// performed the write, which differs from the attendee when staff book on
// behalf of a walk-in customer.  NumberPersons may be nil and counts as
// zero in the service capacity sum.
type Booking struct {
    GUID          string        `json:"guid"`
    ServiceGUID   string        `json:"service_guid"`
    UserGUID      string        `json:"user_guid"`
    NumberPersons *int          `json:"number_persons"`
    Status        BookingStatus `json:"status"`
    UserCreated   string        `json:"user_created"`
    UserUpdated   string        `json:"user_updated"`
    IsDeleted     bool          `json:"is_deleted"`
    CreatedAt     time.Time     `json:"created_at"`
    UpdatedAt     time.Time     `json:"updated_at"`

    // Denormalized attendee contact for display; populated on creation
    // and detail reads, never stored on the bookings table itself.
    AttendeeName  string `json:"attendee_name,omitempty"`
    AttendeePhone string `json:"attendee_phone,omitempty"`
}

// Headcount returns the requested number of persons, treating absence as zero.
func (b *Booking) Headcount() int {
    if b.NumberPersons == nil {
        return 0
    }
    return *b.NumberPersons
}
