package handler

// respond.go holds the pieces of the request boundary shared by every
// handler: actor extraction from the context, request validation with the
// standard failure envelope, pagination parsing and the mapping from
// access errors to HTTP statuses.

import (
    "errors"
    "fmt"
    "net/http"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/velezhnev/tourbook/internal/access"
    "github.com/velezhnev/tourbook/internal/config"
)

// validate is the shared validator instance for request DTOs.  It is
// safe for concurrent use.
var validate = validator.New()

// validationEnvelope is the standard response body for any validation
// failure: an endpoint-specific message plus a list of field errors.
type validationEnvelope struct {
    Message string   `json:"message"`
    Errors  []string `json:"errors"`
}

// validationFailed writes the standard envelope with HTTP 400.  Field
// errors from the validator are flattened into human-readable strings;
// any other error contributes its message verbatim.
func validationFailed(c echo.Context, message string, err error) error {
    env := validationEnvelope{Message: message, Errors: []string{}}
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) {
        for _, fe := range verrs {
            env.Errors = append(env.Errors, fmt.Sprintf("field %s failed on the '%s' rule", fe.Field(), fe.Tag()))
        }
    } else if err != nil {
        env.Errors = append(env.Errors, err.Error())
    }
    return c.JSON(http.StatusBadRequest, env)
}

// bindAndValidate binds the JSON body into req and runs struct
// validation.  On failure it writes the envelope and reports false so
// the handler can bail with `return nil`.
func bindAndValidate(c echo.Context, message string, req any) bool {
    if err := c.Bind(req); err != nil {
        _ = validationFailed(c, message, errors.New("malformed request body"))
        return false
    }
    if err := validate.Struct(req); err != nil {
        _ = validationFailed(c, message, err)
        return false
    }
    return true
}

// actorID extracts the authenticated user's guid placed into the context
// by the JWT middleware.
func actorID(c echo.Context) (string, error) {
    if v, ok := c.Get("user_id").(string); ok && v != "" {
        return v, nil
    }
    return "", errors.New("no authenticated user in context")
}

// respondAccessError maps access-check failures to HTTP responses.  A
// missing actor is a conflict (the token referenced a user that no longer
// exists), a role mismatch is forbidden.
func respondAccessError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, access.ErrActorNotFound):
        return c.JSON(http.StatusConflict, echo.Map{"error": "user does not exist"})
    case errors.Is(err, access.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "access check failed"})
    }
}

// pagination parses limit/offset query parameters.  Limit defaults to 10
// and offset to 0; values above the configured maxima are rejected at the
// boundary with the validation envelope, in which case ok is false and
// the response has already been written.
func pagination(c echo.Context, cfg config.Config) (limit, offset int, ok bool) {
    limit, offset = 10, 0
    if s := c.QueryParam("limit"); s != "" {
        n, perr := strconv.Atoi(s)
        if perr != nil || n < 1 {
            _ = validationFailed(c, "invalid pagination", errors.New("limit must be a positive integer"))
            return 0, 0, false
        }
        if n > cfg.MaxLimit {
            _ = validationFailed(c, "invalid pagination", fmt.Errorf("limit must not exceed %d", cfg.MaxLimit))
            return 0, 0, false
        }
        limit = n
    }
    if s := c.QueryParam("offset"); s != "" {
        n, perr := strconv.Atoi(s)
        if perr != nil || n < 0 {
            _ = validationFailed(c, "invalid pagination", errors.New("offset must be a non-negative integer"))
            return 0, 0, false
        }
        if n > cfg.MaxOffset {
            _ = validationFailed(c, "invalid pagination", fmt.Errorf("offset must not exceed %d", cfg.MaxOffset))
            return 0, 0, false
        }
        offset = n
    }
    return limit, offset, true
}
