package handler

import (
    "net/http"
    "strings"
    "testing"

    "github.com/velezhnev/tourbook/internal/access"
)

func TestCapacityErrorMessage(t *testing.T) {
    t.Parallel()

    err := &CapacityError{Requested: 3, Committed: 8, Max: 10}
    msg := err.Error()
    for _, want := range []string{"3 requested", "8 of 10"} {
        if !strings.Contains(msg, want) {
            t.Errorf("message %q missing %q", msg, want)
        }
    }
}

func TestRespondBookingErrorMapping(t *testing.T) {
    t.Parallel()

    cases := []struct {
        name string
        err  error
        want int
    }{
        {"actor missing", access.ErrActorNotFound, http.StatusConflict},
        {"forbidden", access.ErrForbidden, http.StatusForbidden},
        {"service missing", ErrServiceNotFound, http.StatusNotFound},
        {"booking missing", ErrBookingNotFound, http.StatusNotFound},
        {"service in past", ErrServiceInPast, http.StatusConflict},
        {"capacity", &CapacityError{Requested: 5, Committed: 9, Max: 10}, http.StatusConflict},
    }
    for _, tc := range cases {
        c, rec := testContext(t, http.MethodPost, "/booking/new", "")
        if err := respondBookingError(c, "booking creation failed", tc.err); err != nil {
            t.Fatalf("%s: respond: %v", tc.name, err)
        }
        if rec.Code != tc.want {
            t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
        }
    }
}

func TestCreateBookingInputValidation(t *testing.T) {
    t.Parallel()

    cases := []struct {
        name string
        body string
        ok   bool
    }{
        {"valid", `{"service_guid":"550e8400-e29b-41d4-a716-446655440000","phone":"+79991234567","number_persons":2}`, true},
        {"valid with status", `{"service_guid":"550e8400-e29b-41d4-a716-446655440000","phone":"+79991234567","number_persons":2,"status":"confirmed"}`, true},
        {"missing phone", `{"service_guid":"550e8400-e29b-41d4-a716-446655440000","number_persons":2}`, false},
        {"not a uuid", `{"service_guid":"svc-1","phone":"+79991234567","number_persons":2}`, false},
        {"zero persons", `{"service_guid":"550e8400-e29b-41d4-a716-446655440000","phone":"+79991234567","number_persons":0}`, false},
        {"unknown status", `{"service_guid":"550e8400-e29b-41d4-a716-446655440000","phone":"+79991234567","number_persons":2,"status":"done"}`, false},
    }
    for _, tc := range cases {
        c, _ := testContext(t, http.MethodPost, "/booking/new", tc.body)
        var in CreateBookingInput
        if got := bindAndValidate(c, "booking creation failed", &in); got != tc.ok {
            t.Errorf("%s: bindAndValidate = %v, want %v", tc.name, got, tc.ok)
        }
    }
}
