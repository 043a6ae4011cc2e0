package model

import (
    "errors"
    "testing"
)

func TestNormalizePhoneCanonicalizes(t *testing.T) {
    t.Parallel()

    // Every common way of writing the same Russian mobile number must
    // collapse to one canonical form, so phone lookups find the same
    // user regardless of input formatting.
    inputs := []string{
        "+79991234567",
        "89991234567",
        "8 (999) 123-45-67",
        "+7 999 123 45 67",
    }
    want, err := NormalizePhone(inputs[0])
    if err != nil {
        t.Fatalf("normalize %q: %v", inputs[0], err)
    }
    for _, in := range inputs[1:] {
        got, err := NormalizePhone(in)
        if err != nil {
            t.Fatalf("normalize %q: %v", in, err)
        }
        if got != want {
            t.Errorf("normalize %q = %q, want %q", in, got, want)
        }
    }
}

func TestNormalizePhoneRejectsGarbage(t *testing.T) {
    t.Parallel()

    for _, in := range []string{"", "not a phone", "123", "+7999"} {
        if _, err := NormalizePhone(in); !errors.Is(err, ErrInvalidPhone) {
            t.Errorf("normalize %q: got %v, want ErrInvalidPhone", in, err)
        }
    }
}

func TestValidRole(t *testing.T) {
    t.Parallel()

    for _, r := range []string{"admin", "worker", "user"} {
        if !ValidRole(r) {
            t.Errorf("role %q should be valid", r)
        }
    }
    for _, r := range []string{"", "Admin", "superuser", "ADMIN"} {
        if ValidRole(r) {
            t.Errorf("role %q should be invalid", r)
        }
    }
}

func TestAuthenticatable(t *testing.T) {
    t.Parallel()

    var u User
    if u.Authenticatable() {
        t.Error("user without a password should not be authenticatable")
    }
    empty := ""
    u.Password = &empty
    if u.Authenticatable() {
        t.Error("user with an empty password hash should not be authenticatable")
    }
    hash := "$2a$10$abcdefghijklmnopqrstuv"
    u.Password = &hash
    if !u.Authenticatable() {
        t.Error("user with a password hash should be authenticatable")
    }
}
