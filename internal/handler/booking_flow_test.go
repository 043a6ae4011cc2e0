package handler

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/repository"
)

const (
    actorGUID   = "11111111-1111-4111-8111-111111111111"
    serviceGUID = "22222222-2222-4222-8222-222222222222"
)

func newBookingEnv(t *testing.T) (*BookingHandler, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    h := NewBookingHandler(testCfg(), db,
        repository.NewUserRepo(db),
        repository.NewServiceRepo(db),
        repository.NewBookingRepo(db), nil)
    return h, mock, db
}

var userCols = []string{"guid", "first_name", "last_name", "middle_name", "phone", "email", "password", "role", "is_deleted", "created_at", "updated_at"}

func userRow(guid, phone string, role model.UserRole) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(userCols).
        AddRow(guid, nil, nil, nil, phone, nil, nil, string(role), false, now, now)
}

var serviceCols = []string{"guid", "name", "description", "price", "datetime", "duration", "max_number_persons", "type", "is_deleted", "created_at", "updated_at"}

func serviceRow(guid string, datetime time.Time, maxPersons int) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(serviceCols).
        AddRow(guid, "river tour", "", 1500, datetime, "2h", maxPersons, "tour", false, now, now)
}

// expectCreatePreamble covers the steps shared by every creation flow up
// to and including the service row lock: actor lookup, transaction open,
// attendee lookup by phone, locked service read.
func expectCreatePreamble(mock sqlmock.Sqlmock, svcDatetime time.Time, maxPersons int) {
    mock.ExpectQuery("FROM users WHERE guid").
        WithArgs(actorGUID).
        WillReturnRows(userRow(actorGUID, "+7 999 111-22-33", model.RoleUser))
    mock.ExpectBegin()
    mock.ExpectQuery("FROM users WHERE phone").
        WillReturnRows(userRow("attendee-guid", "+7 999 123 45-67", model.RoleUser))
    mock.ExpectQuery("FROM services WHERE guid (.+) FOR UPDATE").
        WithArgs(serviceGUID).
        WillReturnRows(serviceRow(serviceGUID, svcDatetime, maxPersons))
}

func createInput(persons int) CreateBookingInput {
    return CreateBookingInput{
        ServiceGUID:   serviceGUID,
        AttendeePhone: "+79991234567",
        NumberPersons: persons,
        Status:        "confirmed",
    }
}

func TestCreateBookingOverCapacity(t *testing.T) {
    t.Parallel()

    h, mock, db := newBookingEnv(t)
    defer db.Close()

    // 8 of 10 places taken: asking for 3 more must fail and roll the
    // whole transaction back, creating nothing.
    expectCreatePreamble(mock, time.Now().Add(24*time.Hour), 10)
    mock.ExpectQuery(`SUM\(number_persons\)`).
        WithArgs(serviceGUID).
        WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8))
    mock.ExpectRollback()

    _, err := h.CreateBooking(context.Background(), actorGUID, createInput(3))
    var capErr *CapacityError
    if !errors.As(err, &capErr) {
        t.Fatalf("got %v, want CapacityError", err)
    }
    if capErr.Requested != 3 || capErr.Committed != 8 || capErr.Max != 10 {
        t.Errorf("capacity error fields: %+v", capErr)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestCreateBookingFillsRemainingCapacity(t *testing.T) {
    t.Parallel()

    h, mock, db := newBookingEnv(t)
    defer db.Close()

    // 8 of 10 places taken: asking for exactly the 2 remaining succeeds.
    expectCreatePreamble(mock, time.Now().Add(24*time.Hour), 10)
    mock.ExpectQuery(`SUM\(number_persons\)`).
        WithArgs(serviceGUID).
        WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(8))
    mock.ExpectExec("INSERT INTO bookings").
        WillReturnResult(sqlmock.NewResult(0, 1))
    now := time.Now()
    bookingCols := []string{"guid", "service_guid", "user_guid", "number_persons", "status",
        "user_created", "user_updated", "is_deleted", "created_at", "updated_at", "attendee_name", "attendee_phone"}
    mock.ExpectQuery("FROM bookings b").
        WillReturnRows(sqlmock.NewRows(bookingCols).
            AddRow("new-booking", serviceGUID, "attendee-guid", 2, "confirmed",
                actorGUID, actorGUID, false, now, now, "", "+7 999 123-45-67"))
    mock.ExpectCommit()

    b, err := h.CreateBooking(context.Background(), actorGUID, createInput(2))
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if b.Headcount() != 2 || b.Status != model.StatusConfirmed {
        t.Errorf("booking = %+v", b)
    }
    if b.UserCreated != actorGUID {
        t.Errorf("audit actor = %q, want %q", b.UserCreated, actorGUID)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}

func TestCreateBookingPastService(t *testing.T) {
    t.Parallel()

    h, mock, db := newBookingEnv(t)
    defer db.Close()

    expectCreatePreamble(mock, time.Now().Add(-time.Hour), 10)
    mock.ExpectRollback()

    _, err := h.CreateBooking(context.Background(), actorGUID, createInput(1))
    if !errors.Is(err, ErrServiceInPast) {
        t.Errorf("got %v, want ErrServiceInPast", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}
