package repository

import (
    "context"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/velezhnev/tourbook/internal/model"
)

func TestUpdateStatusSameValue(t *testing.T) {
    t.Parallel()

    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()

    // With clientFoundRows set on the connection the driver reports
    // matched rows, so re-confirming a booking that is already confirmed
    // still counts the row and the write succeeds.
    mock.ExpectExec("UPDATE bookings SET status").
        WithArgs(model.StatusConfirmed, "actor-1", "booking-1").
        WillReturnResult(sqlmock.NewResult(0, 1))

    repo := NewBookingRepo(db)
    if err := repo.UpdateStatus(context.Background(), "booking-1", model.StatusConfirmed, "actor-1"); err != nil {
        t.Errorf("same-value status update: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestUpdateStatusMissingBooking(t *testing.T) {
    t.Parallel()

    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("UPDATE bookings SET status").
        WithArgs(model.StatusCancelled, "actor-1", "no-such-booking").
        WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewBookingRepo(db)
    err = repo.UpdateStatus(context.Background(), "no-such-booking", model.StatusCancelled, "actor-1")
    if !errors.Is(err, ErrNotFound) {
        t.Errorf("got %v, want ErrNotFound", err)
    }
}
