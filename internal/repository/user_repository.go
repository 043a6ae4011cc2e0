package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/google/uuid"

    "github.com/velezhnev/tourbook/internal/model"
)

// UserRepo provides CRUD operations over the users table.  Lookups return
// (nil, nil) when no row matches; callers branch explicitly on absence
// rather than on an error.  All timestamps are stored in UTC.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `guid, first_name, last_name, middle_name, phone, email, password, role, is_deleted, created_at, updated_at`

// scanUser reads one user row from a *sql.Row or *sql.Rows scanner.
func scanUser(scan func(dest ...any) error) (*model.User, error) {
    var u model.User
    var firstName, lastName, middleName, email, password sql.NullString
    err := scan(&u.GUID, &firstName, &lastName, &middleName, &u.Phone,
        &email, &password, &u.Role, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return nil, err
    }
    u.FirstName = nullable(firstName)
    u.LastName = nullable(lastName)
    u.MiddleName = nullable(middleName)
    u.Email = nullable(email)
    u.Password = nullable(password)
    return &u, nil
}

func nullable(s sql.NullString) *string {
    if !s.Valid {
        return nil
    }
    v := s.String
    return &v
}

// Create inserts a new user and populates the generated guid and
// timestamps on u.  A database-level uniqueness violation on phone or
// email surfaces as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
    return r.create(ctx, r.DB, u)
}

// CreateTx is Create within the scope of an existing transaction.  It is
// used for implicit walk-in user creation during booking so that the user
// insert and the booking insert share one unit of work.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
    return r.create(ctx, tx, u)
}

// execer covers *sql.DB and *sql.Tx for statements shared between
// transactional and non-transactional paths.
type execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *UserRepo) create(ctx context.Context, ex execer, u *model.User) error {
    if u.GUID == "" {
        u.GUID = uuid.NewString()
    }
    const q = `INSERT INTO users (guid, first_name, last_name, middle_name, phone, email, password, role)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := ex.ExecContext(ctx, q, u.GUID, u.FirstName, u.LastName, u.MiddleName,
        u.Phone, u.Email, u.Password, u.Role)
    if err != nil {
        if strings.Contains(err.Error(), "1062") {
            return ErrDuplicate
        }
        return err
    }
    // Query back the row to populate timestamps and defaults.
    const sel = `SELECT ` + userColumns + ` FROM users WHERE guid = ?`
    created, err := scanUser(ex.QueryRowContext(ctx, sel, u.GUID).Scan)
    if err != nil {
        return err
    }
    *u = *created
    return nil
}

// GetByID fetches a user by guid.  Absence is (nil, nil).
func (r *UserRepo) GetByID(ctx context.Context, guid string) (*model.User, error) {
    return r.getBy(ctx, "guid", guid)
}

// GetByPhone fetches a user by normalized phone.  Absence is (nil, nil).
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
    return r.getBy(ctx, "phone", phone)
}

// GetByEmail fetches a user by email.  Absence is (nil, nil).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
    return r.getBy(ctx, "email", email)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*model.User, error) {
    q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ? LIMIT 1`
    u, err := scanUser(r.DB.QueryRowContext(ctx, q, value).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return u, err
}

// GetByPhoneTx is GetByPhone inside an existing transaction, used when
// resolving a walk-in attendee during booking creation.
func (r *UserRepo) GetByPhoneTx(ctx context.Context, tx *sql.Tx, phone string) (*model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE phone = ? LIMIT 1`
    u, err := scanUser(tx.QueryRowContext(ctx, q, phone).Scan)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return u, err
}

// List returns users ordered by creation time, paginated by limit/offset.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at LIMIT ? OFFSET ?`
    return r.list(ctx, q, limit, offset)
}

// ListByRole returns users holding the given role, paginated.
func (r *UserRepo) ListByRole(ctx context.Context, role model.UserRole, limit, offset int) ([]model.User, error) {
    const q = `SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY created_at LIMIT ? OFFSET ?`
    return r.list(ctx, q, role, limit, offset)
}

func (r *UserRepo) list(ctx context.Context, query string, args ...any) ([]model.User, error) {
    rows, err := r.DB.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    users := make([]model.User, 0)
    for rows.Next() {
        u, err := scanUser(rows.Scan)
        if err != nil {
            return nil, err
        }
        users = append(users, *u)
    }
    return users, rows.Err()
}

// Update overwrites the mutable profile fields of a user.  Partial update
// behaves identically to full update: the caller supplies the complete
// set of field values every time.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
    const q = `UPDATE users
               SET first_name = ?, last_name = ?, middle_name = ?, phone = ?, email = ?, role = ?
               WHERE guid = ?`
    _, err := r.DB.ExecContext(ctx, q, u.FirstName, u.LastName, u.MiddleName,
        u.Phone, u.Email, u.Role, u.GUID)
    if err != nil && strings.Contains(err.Error(), "1062") {
        return ErrDuplicate
    }
    return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, guid, hash string) error {
    const q = `UPDATE users SET password = ? WHERE guid = ?`
    _, err := r.DB.ExecContext(ctx, q, hash, guid)
    return err
}

// Delete removes the user and every booking that references them as
// attendee, in one transaction.  The audit columns on bookings authored
// by the user are left untouched.
func (r *UserRepo) Delete(ctx context.Context, guid string) error {
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
    if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE user_guid = ?`, guid); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE guid = ?`, guid)
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

// Count returns the total number of user rows.  It backs the startup
// admin seeding check.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
    var n int
    err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
    return n, err
}
