package handler

import (
    "net/http"
    "strings"
    "testing"
)

func TestDeleteSelfRejected(t *testing.T) {
    t.Parallel()

    // Self-deletion is refused before any role check runs, so even an
    // administrator gets the same answer and no directory lookup happens
    // (the handler holds no live store here).
    h := NewUserHandler(testCfg(), nil, nil)

    c, rec := testContext(t, http.MethodDelete, "/user/some-guid", "")
    c.SetParamNames("id")
    c.SetParamValues("actor-guid")
    c.Set("user_id", "actor-guid")

    if err := h.Delete(c); err != nil {
        t.Fatalf("delete: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want 400", rec.Code)
    }
    if !strings.Contains(rec.Body.String(), "cannot delete yourself") {
        t.Errorf("body = %s", rec.Body.String())
    }
}

func TestListByRoleRejectsUnknownRole(t *testing.T) {
    t.Parallel()

    h := NewUserHandler(testCfg(), nil, nil)

    c, rec := testContext(t, http.MethodGet, "/user/all/superuser", "")
    c.SetParamNames("role")
    c.SetParamValues("superuser")
    c.Set("user_id", "actor-guid")

    if err := h.ListByRole(c); err != nil {
        t.Fatalf("list by role: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want 400", rec.Code)
    }
}
