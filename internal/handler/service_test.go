package handler

import (
    "net/http"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/velezhnev/tourbook/internal/repository"
)

func TestServiceListRejectsUnknownType(t *testing.T) {
    t.Parallel()

    h := NewServiceHandler(testCfg(), nil, nil)

    c, rec := testContext(t, http.MethodGet, "/service/all?type=sale", "")
    if err := h.List(c); err != nil {
        t.Fatalf("list: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want 400", rec.Code)
    }
}

func TestServiceListFiltersByType(t *testing.T) {
    t.Parallel()

    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock: %v", err)
    }
    defer db.Close()
    h := NewServiceHandler(testCfg(), nil, repository.NewServiceRepo(db))

    now := time.Now()
    mock.ExpectQuery("FROM services WHERE type").
        WithArgs("rent", 10, 0).
        WillReturnRows(sqlmock.NewRows(serviceCols).
            AddRow("svc-1", "kayak rental", "", 500, now.Add(48*time.Hour), "4h", 6, "rent", false, now, now))

    c, rec := testContext(t, http.MethodGet, "/service/all?type=rent", "")
    if err := h.List(c); err != nil {
        t.Fatalf("list: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Errorf("status = %d, want 200", rec.Code)
    }
    if body := rec.Body.String(); !strings.Contains(body, "kayak rental") {
        t.Errorf("body missing filtered service: %s", body)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("expectations: %v", err)
    }
}
