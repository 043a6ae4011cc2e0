package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    _ "github.com/go-sql-driver/mysql"

    "github.com/velezhnev/tourbook/internal/config"
)

// Open connects to MySQL using the database parameters from cfg and
// verifies the connection.  Each request later runs its own transactional
// unit of work against the returned pool; there is no other shared state.
func Open(cfg config.Config) (*sql.DB, error) {
    db, err := sql.Open("mysql", buildDSN(cfg))
    if err != nil {
        return nil, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    // Ping with timeout
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        return nil, err
    }
    return db, nil
}

// buildDSN assembles the MySQL connection string.
// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent.
// clientFoundRows=true makes UPDATE report matched rows rather than
// changed rows; the repositories infer row existence from RowsAffected,
// and without this flag an update writing the value a row already holds
// would read as "no such row".
func buildDSN(cfg config.Config) string {
    auth := cfg.DBUser
    if cfg.DBPass != "" {
        auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
    }
    return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
        auth, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
