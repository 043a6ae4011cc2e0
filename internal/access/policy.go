// Package access implements the per-operation authorization check used by
// every handler.  An operation declares the set of roles allowed to
// perform it; the resolved actor must exist and hold one of them.
package access

import (
    "errors"

    "github.com/velezhnev/tourbook/internal/model"
)

// ErrActorNotFound is returned when the actor resolved from the request
// token no longer exists in the user directory (deleted account, stale
// token).  It is checked before any role comparison.
var ErrActorNotFound = errors.New("actor does not exist")

// ErrForbidden is returned when the actor exists but does not hold any of
// the roles required for the operation.
var ErrForbidden = errors.New("insufficient role for this operation")

// Authorize validates that actor exists and holds one of the required
// roles.  Required roles are always a non-empty set; call sites never pass
// a bare single role outside the variadic form.  A nil actor fails with
// ErrActorNotFound regardless of the role set.
func Authorize(actor *model.User, roles ...model.UserRole) error {
    if actor == nil {
        return ErrActorNotFound
    }
    for _, r := range roles {
        if actor.Role == r {
            return nil
        }
    }
    return ErrForbidden
}
