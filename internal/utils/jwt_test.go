package utils

import (
    "errors"
    "testing"
    "time"
)

const testSecret = "test-secret"

func TestIssueAndVerifyToken(t *testing.T) {
    t.Parallel()

    tok, err := IssueToken(testSecret, "HS256", "user-guid-1", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    sub, err := VerifyToken(testSecret, tok)
    if err != nil {
        t.Fatalf("verify: %v", err)
    }
    if sub != "user-guid-1" {
        t.Errorf("subject = %q, want %q", sub, "user-guid-1")
    }
}

func TestVerifyTokenWrongSecret(t *testing.T) {
    t.Parallel()

    tok, err := IssueToken(testSecret, "HS256", "user-guid-1", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if _, err := VerifyToken("other-secret", tok); !errors.Is(err, ErrInvalidToken) {
        t.Errorf("got %v, want ErrInvalidToken", err)
    }
}

func TestVerifyTokenTampered(t *testing.T) {
    t.Parallel()

    tok, err := IssueToken(testSecret, "HS256", "user-guid-1", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    tampered := tok[:len(tok)-2] + "xx"
    if _, err := VerifyToken(testSecret, tampered); !errors.Is(err, ErrInvalidToken) {
        t.Errorf("got %v, want ErrInvalidToken", err)
    }
}

func TestVerifyTokenExpired(t *testing.T) {
    t.Parallel()

    tok, err := IssueToken(testSecret, "HS256", "user-guid-1", -time.Minute)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if _, err := VerifyToken(testSecret, tok); !errors.Is(err, ErrInvalidToken) {
        t.Errorf("got %v, want ErrInvalidToken", err)
    }
}

func TestVerifyTokenGarbage(t *testing.T) {
    t.Parallel()

    for _, tok := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
        if _, err := VerifyToken(testSecret, tok); !errors.Is(err, ErrInvalidToken) {
            t.Errorf("verify %q: got %v, want ErrInvalidToken", tok, err)
        }
    }
}

func TestSigningMethodFamilies(t *testing.T) {
    t.Parallel()

    // Tokens issued with any HS variant verify with the same secret.
    for _, alg := range []string{"HS256", "HS384", "HS512", "unknown"} {
        tok, err := IssueToken(testSecret, alg, "u", time.Hour)
        if err != nil {
            t.Fatalf("issue alg %s: %v", alg, err)
        }
        if sub, err := VerifyToken(testSecret, tok); err != nil || sub != "u" {
            t.Errorf("verify alg %s: sub=%q err=%v", alg, sub, err)
        }
    }
}
