package model

import "testing"

func TestValidBookingStatus(t *testing.T) {
    t.Parallel()

    for _, s := range []string{"pending", "confirmed", "cancelled"} {
        if !ValidBookingStatus(s) {
            t.Errorf("status %q should be valid", s)
        }
    }
    for _, s := range []string{"", "Pending", "done", "canceled"} {
        if ValidBookingStatus(s) {
            t.Errorf("status %q should be invalid", s)
        }
    }
}

func TestHeadcount(t *testing.T) {
    t.Parallel()

    var b Booking
    if got := b.Headcount(); got != 0 {
        t.Errorf("nil headcount = %d, want 0", got)
    }
    n := 4
    b.NumberPersons = &n
    if got := b.Headcount(); got != 4 {
        t.Errorf("headcount = %d, want 4", got)
    }
}
