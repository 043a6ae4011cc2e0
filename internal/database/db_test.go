package database

import (
    "strings"
    "testing"

    "github.com/velezhnev/tourbook/internal/config"
)

func TestBuildDSN(t *testing.T) {
    t.Parallel()

    cfg := config.Config{
        DBUser: "app", DBPass: "s3cret",
        DBHost: "db.local", DBPort: "3306", DBName: "tourbook",
    }
    dsn := buildDSN(cfg)

    if !strings.HasPrefix(dsn, "app:s3cret@tcp(db.local:3306)/tourbook?") {
        t.Errorf("dsn prefix wrong: %s", dsn)
    }
    for _, param := range []string{
        "parseTime=true",
        "loc=UTC",
        // Updates that rewrite a row with the value it already holds must
        // still report the row as matched, or the repositories would
        // mistake an idempotent write for a missing record.
        "clientFoundRows=true",
    } {
        if !strings.Contains(dsn, param) {
            t.Errorf("dsn missing %s: %s", param, dsn)
        }
    }
}

func TestBuildDSNNoPassword(t *testing.T) {
    t.Parallel()

    cfg := config.Config{DBUser: "app", DBHost: "localhost", DBPort: "3306", DBName: "tourbook"}
    dsn := buildDSN(cfg)
    if !strings.HasPrefix(dsn, "app@tcp(") {
        t.Errorf("passwordless dsn wrong: %s", dsn)
    }
}
