package access

import (
    "errors"
    "testing"

    "github.com/velezhnev/tourbook/internal/model"
)

func TestAuthorizeNilActor(t *testing.T) {
    t.Parallel()

    // A missing actor fails with the same error whatever the role set,
    // so a stale token never leaks whether the operation was in reach.
    if err := Authorize(nil, model.RoleAdmin); !errors.Is(err, ErrActorNotFound) {
        t.Errorf("got %v, want ErrActorNotFound", err)
    }
    if err := Authorize(nil, model.RoleUser, model.RoleWorker, model.RoleAdmin); !errors.Is(err, ErrActorNotFound) {
        t.Errorf("got %v, want ErrActorNotFound", err)
    }
}

func TestAuthorizeRoleMembership(t *testing.T) {
    t.Parallel()

    worker := &model.User{GUID: "w", Role: model.RoleWorker}
    if err := Authorize(worker, model.RoleWorker, model.RoleAdmin); err != nil {
        t.Errorf("worker in {worker,admin}: %v", err)
    }
    if err := Authorize(worker, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
        t.Errorf("worker in {admin}: got %v, want ErrForbidden", err)
    }

    user := &model.User{GUID: "u", Role: model.RoleUser}
    if err := Authorize(user, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        t.Errorf("user in full set: %v", err)
    }
    if err := Authorize(user, model.RoleWorker, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
        t.Errorf("user in staff set: got %v, want ErrForbidden", err)
    }
}
