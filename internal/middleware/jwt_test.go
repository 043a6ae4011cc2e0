package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/velezhnev/tourbook/internal/utils"
)

const testSecret = "middleware-test-secret"

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, string) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/user/me", nil)
    if authorization != "" {
        req.Header.Set("Authorization", authorization)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var gotUserID string
    next := func(c echo.Context) error {
        gotUserID, _ = c.Get("user_id").(string)
        return c.NoContent(http.StatusOK)
    }
    if err := JWTAuth(testSecret)(next)(c); err != nil {
        t.Fatalf("middleware: %v", err)
    }
    return rec, gotUserID
}

func TestJWTAuthValidToken(t *testing.T) {
    t.Parallel()

    tok, err := utils.IssueToken(testSecret, "HS256", "user-guid-9", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    rec, uid := runJWT(t, "Bearer "+tok)
    if rec.Code != http.StatusOK {
        t.Errorf("status = %d, want 200", rec.Code)
    }
    if uid != "user-guid-9" {
        t.Errorf("user_id = %q, want user-guid-9", uid)
    }
}

func TestJWTAuthMissingHeader(t *testing.T) {
    t.Parallel()

    rec, _ := runJWT(t, "")
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want 401", rec.Code)
    }
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
    t.Parallel()

    otherTok, err := utils.IssueToken("some-other-secret", "HS256", "user-guid-9", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    for _, auth := range []string{
        "Bearer garbage",
        "Bearer " + otherTok,
        "Basic dXNlcjpwYXNz",
    } {
        rec, uid := runJWT(t, auth)
        if rec.Code != http.StatusUnauthorized {
            t.Errorf("%q: status = %d, want 401", auth, rec.Code)
        }
        if uid != "" {
            t.Errorf("%q: user_id leaked: %q", auth, uid)
        }
    }
}
