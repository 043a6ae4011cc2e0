package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/access"
    "github.com/velezhnev/tourbook/internal/config"
    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/repository"
    "github.com/velezhnev/tourbook/internal/utils"
)

// UserHandler implements the user directory endpoints.  Every operation
// resolves the actor from the request token and runs the access check
// before touching the directory; the required role set is declared per
// operation.
type UserHandler struct {
    Cfg      config.Config
    Users    *repository.UserRepo
    BookingRepo *repository.BookingRepo
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(cfg config.Config, users *repository.UserRepo, bookings *repository.BookingRepo) *UserHandler {
    return &UserHandler{Cfg: cfg, Users: users, BookingRepo: bookings}
}

type userUpdateReq struct {
    FirstName  *string `json:"first_name"`
    LastName   *string `json:"last_name"`
    MiddleName *string `json:"middle_name"`
    Phone      string  `json:"phone" validate:"required"`
    Email      *string `json:"email" validate:"omitempty,email"`
    Role       string  `json:"role" validate:"required,oneof=admin worker user"`
}

// loadActor resolves the requester from context into a user record.  The
// record may be nil when the token references a deleted user; the access
// check turns that into ErrActorNotFound.
func (h *UserHandler) loadActor(ctx context.Context, c echo.Context) (*model.User, bool) {
    id, err := actorID(c)
    if err != nil {
        _ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        return nil, false
    }
    actor, err := h.Users.GetByID(ctx, id)
    if err != nil {
        _ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        return nil, false
    }
    return actor, true
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    return c.JSON(http.StatusOK, actor)
}

// UpdateMe overwrites the authenticated user's own profile fields.  The
// role cannot be escalated through this endpoint: whatever the body says,
// the stored role is kept.
func (h *UserHandler) UpdateMe(c echo.Context) error {
    var req userUpdateReq
    if !bindAndValidate(c, "profile update failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    return h.applyUpdate(ctx, c, actor, req, string(actor.Role))
}

// Create registers a user on behalf of an administrator.  Unlike signup
// the password is optional, which produces a non-authenticatable guest
// record.
func (h *UserHandler) Create(c echo.Context) error {
    var req struct {
        userUpdateReq
        Password *string `json:"password" validate:"omitempty,min=6"`
    }
    if !bindAndValidate(c, "user creation failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }

    phone, err := model.NormalizePhone(req.Phone)
    if err != nil {
        return validationFailed(c, "user creation failed", err)
    }
    if existing, err := h.Users.GetByPhone(ctx, phone); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    } else if existing != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this phone number already exists"})
    }

    u := model.User{
        FirstName:  req.FirstName,
        LastName:   req.LastName,
        MiddleName: req.MiddleName,
        Phone:      phone,
        Email:      normalizeEmail(req.Email),
        Role:       model.UserRole(req.Role),
    }
    if req.Password != nil && *req.Password != "" {
        hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
        }
        u.Password = &hash
    }
    if err := h.Users.Create(ctx, &u); err != nil {
        if err == repository.ErrDuplicate {
            return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this phone number or email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }
    log.Debugf("user %s: created user %s", actor.GUID, u.GUID)
    return c.JSON(http.StatusCreated, u)
}

// GetByID returns a user by guid; staff only.
func (h *UserHandler) GetByID(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    u, err := h.Users.GetByID(ctx, c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if u == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, u)
}

// ListAll returns all users paginated; staff only.
func (h *UserHandler) ListAll(c echo.Context) error {
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    users, err := h.Users.List(ctx, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// ListByRole returns users holding a given role; admin only.
func (h *UserHandler) ListByRole(c echo.Context) error {
    role := c.Param("role")
    if !model.ValidRole(role) {
        return c.JSON(http.StatusBadRequest, validationEnvelope{
            Message: "user listing failed",
            Errors:  []string{"role must be one of admin, worker, user"},
        })
    }
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    users, err := h.Users.ListByRole(ctx, model.UserRole(role), limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Bookings returns the bookings where the given user is the attendee.
func (h *UserHandler) Bookings(c echo.Context) error {
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    bookings, err := h.BookingRepo.ListByUser(ctx, c.Param("id"), limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// MyBookings returns the authenticated user's own bookings.
func (h *UserHandler) MyBookings(c echo.Context) error {
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    bookings, err := h.BookingRepo.ListByUser(ctx, actor.GUID, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Update overwrites a user's profile by guid; admin only.  PUT and PATCH
// behave identically: the full field set is replaced every time.
func (h *UserHandler) Update(c echo.Context) error {
    var req userUpdateReq
    if !bindAndValidate(c, "user update failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    target, err := h.Users.GetByID(ctx, c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if target == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return h.applyUpdate(ctx, c, target, req, req.Role)
}

// applyUpdate writes the new field values onto target and returns the
// refreshed record.
func (h *UserHandler) applyUpdate(ctx context.Context, c echo.Context, target *model.User, req userUpdateReq, role string) error {
    phone, err := model.NormalizePhone(req.Phone)
    if err != nil {
        return validationFailed(c, "user update failed", err)
    }
    target.FirstName = req.FirstName
    target.LastName = req.LastName
    target.MiddleName = req.MiddleName
    target.Phone = phone
    target.Email = normalizeEmail(req.Email)
    target.Role = model.UserRole(role)
    if err := h.Users.Update(ctx, target); err != nil {
        if err == repository.ErrDuplicate {
            return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this phone number or email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
    }
    updated, err := h.Users.GetByID(ctx, target.GUID)
    if err != nil || updated == nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload user failed"})
    }
    log.Debugf("user %s updated", target.GUID)
    return c.JSON(http.StatusOK, updated)
}

// Delete removes a user by guid.  Self-deletion is rejected before any
// role check runs, with an error independent of the actor's role.  Only
// administrators may delete other users; the delete is hard and cascades
// to the user's bookings.
func (h *UserHandler) Delete(c echo.Context) error {
    targetID := c.Param("id")
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if id == targetID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot delete yourself"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.loadActor(ctx, c)
    if !ok {
        return nil
    }
    if err := access.Authorize(actor, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    if err := h.Users.Delete(ctx, targetID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
    }
    log.Debugf("user %s: deleted user %s", actor.GUID, targetID)
    return c.NoContent(http.StatusNoContent)
}

// normalizeEmail lowercases and trims an optional email value.
func normalizeEmail(email *string) *string {
    if email == nil {
        return nil
    }
    v := strings.ToLower(strings.TrimSpace(*email))
    if v == "" {
        return nil
    }
    return &v
}
