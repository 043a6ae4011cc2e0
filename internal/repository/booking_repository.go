package repository

import (
    "context"
    "database/sql"
    "fmt"

    "github.com/google/uuid"

    "github.com/velezhnev/tourbook/internal/model"
)

// BookingRepo provides CRUD operations over the bookings table.  Creation
// always runs inside a transaction opened by the caller so that the
// capacity check, an implicit walk-in user insert and the booking insert
// commit or roll back together.
type BookingRepo struct{ DB *sql.DB }

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = `b.guid, b.service_guid, b.user_guid, b.number_persons, b.status,
       b.user_created, b.user_updated, b.is_deleted, b.created_at, b.updated_at`

// selectBooking joins the attendee for denormalized display fields.
const selectBooking = `SELECT ` + bookingColumns + `,
       COALESCE(CONCAT_WS(' ', u.last_name, u.first_name), ''), COALESCE(u.phone, '')
       FROM bookings b
       LEFT JOIN users u ON u.guid = b.user_guid`

func scanBooking(scan func(dest ...any) error) (*model.Booking, error) {
    var b model.Booking
    var persons sql.NullInt64
    err := scan(&b.GUID, &b.ServiceGUID, &b.UserGUID, &persons, &b.Status,
        &b.UserCreated, &b.UserUpdated, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt,
        &b.AttendeeName, &b.AttendeePhone)
    if err != nil {
        return nil, err
    }
    if persons.Valid {
        n := int(persons.Int64)
        b.NumberPersons = &n
    }
    return &b, nil
}

// CommittedHeadcountTx returns the sum of number_persons over every
// booking row for the service, inside the caller's transaction.  Rows
// with a NULL headcount count as zero.  Cancelled bookings are included
// in the sum: a cancelled slot still reserves its seats.
func (r *BookingRepo) CommittedHeadcountTx(ctx context.Context, tx *sql.Tx, serviceGUID string) (int, error) {
    const q = `SELECT COALESCE(SUM(number_persons), 0) FROM bookings WHERE service_guid = ?`
    var sum int
    err := tx.QueryRowContext(ctx, q, serviceGUID).Scan(&sum)
    return sum, err
}

// CreateTx inserts a new booking within the caller's transaction and
// populates the generated guid, timestamps and denormalized attendee
// fields on b.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    if b.GUID == "" {
        b.GUID = uuid.NewString()
    }
    const q = `INSERT INTO bookings (guid, service_guid, user_guid, number_persons, status, user_created, user_updated)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, b.GUID, b.ServiceGUID, b.UserGUID,
        b.NumberPersons, b.Status, b.UserCreated, b.UserUpdated)
    if err != nil {
        return err
    }
    const sel = selectBooking + ` WHERE b.guid = ?`
    created, err := scanBooking(tx.QueryRowContext(ctx, sel, b.GUID).Scan)
    if err != nil {
        return err
    }
    *b = *created
    return nil
}

// GetByID fetches a booking by guid with attendee display fields.
// Absence is (nil, nil).
func (r *BookingRepo) GetByID(ctx context.Context, guid string) (*model.Booking, error) {
    const q = selectBooking + ` WHERE b.guid = ? LIMIT 1`
    b, err := scanBooking(r.DB.QueryRowContext(ctx, q, guid).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return b, err
}

// List returns bookings ordered by creation time descending, paginated.
func (r *BookingRepo) List(ctx context.Context, limit, offset int) ([]model.Booking, error) {
    const q = selectBooking + ` ORDER BY b.created_at DESC LIMIT ? OFFSET ?`
    return r.listQuery(ctx, q, limit, offset)
}

// ListByUser returns the bookings whose attendee is the given user,
// ordered by creation time descending, paginated.
func (r *BookingRepo) ListByUser(ctx context.Context, userGUID string, limit, offset int) ([]model.Booking, error) {
    const q = selectBooking + ` WHERE b.user_guid = ? ORDER BY b.created_at DESC LIMIT ? OFFSET ?`
    return r.listQuery(ctx, q, userGUID, limit, offset)
}

func (r *BookingRepo) listQuery(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    bookings := make([]model.Booking, 0)
    for rows.Next() {
        b, err := scanBooking(rows.Scan)
        if err != nil {
            return nil, err
        }
        bookings = append(bookings, *b)
    }
    return bookings, rows.Err()
}

// UpdateStatus unconditionally overwrites the status of a booking and
// records the actor in the audit column.
func (r *BookingRepo) UpdateStatus(ctx context.Context, guid string, status model.BookingStatus, updatedBy string) error {
    const q = `UPDATE bookings SET status = ?, user_updated = ? WHERE guid = ?`
    res, err := r.DB.ExecContext(ctx, q, status, updatedBy, guid)
    if err != nil {
        return err
    }
    return rowsOrNotFound(res)
}

// Update overwrites the mutable fields of a booking: the target service,
// the headcount and the status.  The attendee never changes after
// creation.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
    const q = `UPDATE bookings SET service_guid = ?, number_persons = ?, status = ?, user_updated = ? WHERE guid = ?`
    _, err := r.DB.ExecContext(ctx, q, b.ServiceGUID, b.NumberPersons, b.Status, b.UserUpdated, b.GUID)
    return err
}

// Delete hard-deletes a booking row.
func (r *BookingRepo) Delete(ctx context.Context, guid string) error {
    res, err := r.DB.ExecContext(ctx, `DELETE FROM bookings WHERE guid = ?`, guid)
    if err != nil {
        return err
    }
    return rowsOrNotFound(res)
}

func rowsOrNotFound(res sql.Result) error {
    n, err := res.RowsAffected()
    if err != nil {
        return fmt.Errorf("rows affected: %w", err)
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}
