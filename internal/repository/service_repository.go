package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/velezhnev/tourbook/internal/model"
)

// ServiceRepo provides CRUD operations over the services table.  The
// tuple (name, price, datetime, max_number_persons, type) is unique among
// active services; duplicate detection runs through GetByFields before
// every insert.
type ServiceRepo struct{ DB *sql.DB }

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{DB: db} }

const serviceColumns = `guid, name, description, price, datetime, duration, max_number_persons, type, is_deleted, created_at, updated_at`

func scanService(scan func(dest ...any) error) (*model.Service, error) {
    var s model.Service
    err := scan(&s.GUID, &s.Name, &s.Description, &s.Price, &s.DateTime,
        &s.Duration, &s.MaxNumberPersons, &s.Type, &s.IsDeleted, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// Create inserts a new service and populates the generated guid and
// timestamps on s.
func (r *ServiceRepo) Create(ctx context.Context, s *model.Service) error {
    if s.GUID == "" {
        s.GUID = uuid.NewString()
    }
    const q = `INSERT INTO services (guid, name, description, price, datetime, duration, max_number_persons, type)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := r.DB.ExecContext(ctx, q, s.GUID, s.Name, s.Description, s.Price,
        s.DateTime, s.Duration, s.MaxNumberPersons, s.Type)
    if err != nil {
        if strings.Contains(err.Error(), "1062") {
            return ErrDuplicate
        }
        return err
    }
    const sel = `SELECT ` + serviceColumns + ` FROM services WHERE guid = ?`
    created, err := scanService(r.DB.QueryRowContext(ctx, sel, s.GUID).Scan)
    if err != nil {
        return err
    }
    *s = *created
    return nil
}

// GetByID fetches a service by guid.  Absence is (nil, nil).
func (r *ServiceRepo) GetByID(ctx context.Context, guid string) (*model.Service, error) {
    const q = `SELECT ` + serviceColumns + ` FROM services WHERE guid = ? LIMIT 1`
    s, err := scanService(r.DB.QueryRowContext(ctx, q, guid).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return s, err
}

// GetByIDForUpdateTx fetches a service by guid inside a transaction,
// locking the row until the transaction ends.  Booking creation takes
// this lock so that two concurrent capacity checks against the same
// service serialize instead of both passing before either commit.
func (r *ServiceRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, guid string) (*model.Service, error) {
    const q = `SELECT ` + serviceColumns + ` FROM services WHERE guid = ? LIMIT 1 FOR UPDATE`
    s, err := scanService(tx.QueryRowContext(ctx, q, guid).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return s, err
}

// GetByFields fetches an active service matching the full identity tuple.
// It backs duplicate-listing detection on create.  Absence is (nil, nil).
func (r *ServiceRepo) GetByFields(ctx context.Context, name string, price int64, datetime time.Time, maxPersons int, typ model.ServiceType) (*model.Service, error) {
    const q = `SELECT ` + serviceColumns + ` FROM services
               WHERE name = ? AND price = ? AND datetime = ? AND max_number_persons = ? AND type = ? AND is_deleted = 0
               LIMIT 1`
    s, err := scanService(r.DB.QueryRowContext(ctx, q, name, price, datetime, maxPersons, typ).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return s, err
}

// List returns services ordered by scheduled datetime, paginated.
func (r *ServiceRepo) List(ctx context.Context, limit, offset int) ([]model.Service, error) {
    const q = `SELECT ` + serviceColumns + ` FROM services ORDER BY datetime LIMIT ? OFFSET ?`
    rows, err := r.DB.QueryContext(ctx, q, limit, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    services := make([]model.Service, 0)
    for rows.Next() {
        s, err := scanService(rows.Scan)
        if err != nil {
            return nil, err
        }
        services = append(services, *s)
    }
    return services, rows.Err()
}

// ListByType returns services of one type ordered by scheduled datetime,
// paginated.
func (r *ServiceRepo) ListByType(ctx context.Context, typ model.ServiceType, limit, offset int) ([]model.Service, error) {
    const q = `SELECT ` + serviceColumns + ` FROM services WHERE type = ? ORDER BY datetime LIMIT ? OFFSET ?`
    rows, err := r.DB.QueryContext(ctx, q, typ, limit, offset)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    services := make([]model.Service, 0)
    for rows.Next() {
        s, err := scanService(rows.Scan)
        if err != nil {
            return nil, err
        }
        services = append(services, *s)
    }
    return services, rows.Err()
}

// Update overwrites all mutable fields of a service.
func (r *ServiceRepo) Update(ctx context.Context, s *model.Service) error {
    const q = `UPDATE services
               SET name = ?, description = ?, price = ?, datetime = ?, duration = ?, max_number_persons = ?, type = ?
               WHERE guid = ?`
    _, err := r.DB.ExecContext(ctx, q, s.Name, s.Description, s.Price, s.DateTime,
        s.Duration, s.MaxNumberPersons, s.Type, s.GUID)
    return err
}

// Delete removes the service and every booking referencing it, in one
// transaction, mirroring the relational cascade.
func (r *ServiceRepo) Delete(ctx context.Context, guid string) error {
    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE service_guid = ?`, guid); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `DELETE FROM services WHERE guid = ?`, guid)
    if err != nil {
        return err
    }
    if n, err := res.RowsAffected(); err == nil && n == 0 {
        return ErrNotFound
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
