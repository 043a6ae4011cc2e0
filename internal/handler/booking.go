package handler

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/access"
    "github.com/velezhnev/tourbook/internal/config"
    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/repository"
)

// Domain errors surfaced by the booking operations.  The HTTP layer and
// the queue consumer map them independently.
var (
    ErrServiceNotFound = errors.New("service not found")
    ErrBookingNotFound = errors.New("booking not found")
    // ErrServiceInPast rejects bookings against a service whose scheduled
    // datetime has already passed.
    ErrServiceInPast = errors.New("the service datetime is in the past")
)

// CapacityError reports a headcount that would push a service past its
// seat ceiling.  Committed counts every existing booking of the service,
// cancelled ones included: a cancelled slot still reserves its seats.
type CapacityError struct {
    Requested int
    Committed int
    Max       int
}

func (e *CapacityError) Error() string {
    return fmt.Sprintf("not enough free places: %d requested, %d of %d already taken", e.Requested, e.Committed, e.Max)
}

// Publisher emits a message after a booking is created.  A nil Publisher
// disables publishing.
type Publisher interface {
    PublishBookingCreated(ctx context.Context, b *model.Booking) error
}

// BookingHandler implements the booking endpoints.  Creation runs inside
// a single transaction holding a row lock on the service, so concurrent
// requests against the same service serialize on the capacity check.
// The exported operation methods carry no HTTP types; the queue consumer
// calls them directly with the same semantics.
type BookingHandler struct {
    Cfg       config.Config
    DB        *sql.DB
    Users     *repository.UserRepo
    Services  *repository.ServiceRepo
    Bookings  *repository.BookingRepo
    Publisher Publisher
}

// NewBookingHandler constructs a BookingHandler.  pub may be nil.
func NewBookingHandler(cfg config.Config, db *sql.DB, users *repository.UserRepo, services *repository.ServiceRepo, bookings *repository.BookingRepo, pub Publisher) *BookingHandler {
    return &BookingHandler{Cfg: cfg, DB: db, Users: users, Services: services, Bookings: bookings, Publisher: pub}
}

// CreateBookingInput carries everything needed to book seats on a
// service.  The attendee is identified by phone; an unknown phone gets a
// guest user record created on the fly inside the same transaction.
type CreateBookingInput struct {
    ServiceGUID       string `json:"service_guid" validate:"required,uuid4"`
    AttendeeFirstName string `json:"first_name"`
    AttendeeLastName  string `json:"last_name"`
    AttendeePhone     string `json:"phone" validate:"required"`
    NumberPersons     int    `json:"number_persons" validate:"required,gte=1"`
    Status            string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// UpdateBookingInput overwrites a booking's service, headcount and
// status.
type UpdateBookingInput struct {
    ServiceGUID   string `json:"service_guid" validate:"required,uuid4"`
    NumberPersons int    `json:"number_persons" validate:"required,gte=1"`
    Status        string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// CreateBooking books seats for an attendee on behalf of actorGUID.
//
// The whole operation is one transaction: resolve or create the attendee
// by phone, lock the service row, verify the schedule and the remaining
// capacity against the committed headcount, then insert.  The lock makes
// the check-then-insert atomic with respect to concurrent creations on
// the same service.  The caller-supplied status is stored as given;
// an empty status defaults to pending.
func (h *BookingHandler) CreateBooking(ctx context.Context, actorGUID string, in CreateBookingInput) (*model.Booking, error) {
    actor, err := h.Users.GetByID(ctx, actorGUID)
    if err != nil {
        return nil, err
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return nil, err
    }

    phone, err := model.NormalizePhone(in.AttendeePhone)
    if err != nil {
        return nil, err
    }
    status := model.BookingStatus(in.Status)
    if in.Status == "" {
        status = model.StatusPending
    }

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    attendee, err := h.Users.GetByPhoneTx(ctx, tx, phone)
    if err != nil {
        return nil, err
    }
    if attendee == nil {
        guest := model.User{Phone: phone, Role: model.RoleUser}
        if in.AttendeeFirstName != "" {
            guest.FirstName = &in.AttendeeFirstName
        }
        if in.AttendeeLastName != "" {
            guest.LastName = &in.AttendeeLastName
        }
        if err := h.Users.CreateTx(ctx, tx, &guest); err != nil {
            return nil, err
        }
        attendee = &guest
        log.Debugf("user %s: created guest user %s for booking", actorGUID, guest.GUID)
    }

    svc, err := h.Services.GetByIDForUpdateTx(ctx, tx, in.ServiceGUID)
    if err != nil {
        return nil, err
    }
    if svc == nil {
        return nil, ErrServiceNotFound
    }
    if svc.DateTime.Before(time.Now().UTC()) {
        return nil, ErrServiceInPast
    }

    taken, err := h.Bookings.CommittedHeadcountTx(ctx, tx, svc.GUID)
    if err != nil {
        return nil, err
    }
    if in.NumberPersons+taken > svc.MaxNumberPersons {
        return nil, &CapacityError{Requested: in.NumberPersons, Committed: taken, Max: svc.MaxNumberPersons}
    }

    persons := in.NumberPersons
    b := model.Booking{
        ServiceGUID:   svc.GUID,
        UserGUID:      attendee.GUID,
        NumberPersons: &persons,
        Status:        status,
        UserCreated:   actorGUID,
        UserUpdated:   actorGUID,
    }
    if err := h.Bookings.CreateTx(ctx, tx, &b); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    if h.Publisher != nil {
        if err := h.Publisher.PublishBookingCreated(ctx, &b); err != nil {
            log.Warnf("publish booking %s: %v", b.GUID, err)
        }
    }
    log.Debugf("user %s: booked %d place(s) on service %s (booking %s)", actorGUID, persons, svc.GUID, b.GUID)
    return &b, nil
}

// ChangeBookingStatus moves a booking to the given status.  Staff only.
func (h *BookingHandler) ChangeBookingStatus(ctx context.Context, actorGUID, bookingGUID string, status model.BookingStatus) (*model.Booking, error) {
    if err := h.authorizeStaff(ctx, actorGUID); err != nil {
        return nil, err
    }
    if err := h.Bookings.UpdateStatus(ctx, bookingGUID, status, actorGUID); err != nil {
        if err == repository.ErrNotFound {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return h.Bookings.GetByID(ctx, bookingGUID)
}

// UpdateBooking overwrites a booking's service, headcount and status.
// The rewrite skips the capacity re-check on purpose: staff use it to
// fix records, including ones that would not fit under the current
// ceiling.
func (h *BookingHandler) UpdateBooking(ctx context.Context, actorGUID, bookingGUID string, in UpdateBookingInput) (*model.Booking, error) {
    if err := h.authorizeStaff(ctx, actorGUID); err != nil {
        return nil, err
    }
    b, err := h.Bookings.GetByID(ctx, bookingGUID)
    if err != nil {
        return nil, err
    }
    if b == nil {
        return nil, ErrBookingNotFound
    }
    svc, err := h.Services.GetByID(ctx, in.ServiceGUID)
    if err != nil {
        return nil, err
    }
    if svc == nil {
        return nil, ErrServiceNotFound
    }
    persons := in.NumberPersons
    b.ServiceGUID = svc.GUID
    b.NumberPersons = &persons
    b.Status = model.BookingStatus(in.Status)
    b.UserUpdated = actorGUID
    if err := h.Bookings.Update(ctx, b); err != nil {
        if err == repository.ErrNotFound {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return h.Bookings.GetByID(ctx, bookingGUID)
}

// DeleteBooking removes a booking.  Staff only.
func (h *BookingHandler) DeleteBooking(ctx context.Context, actorGUID, bookingGUID string) error {
    if err := h.authorizeStaff(ctx, actorGUID); err != nil {
        return err
    }
    if err := h.Bookings.Delete(ctx, bookingGUID); err != nil {
        if err == repository.ErrNotFound {
            return ErrBookingNotFound
        }
        return err
    }
    log.Debugf("user %s: deleted booking %s", actorGUID, bookingGUID)
    return nil
}

func (h *BookingHandler) authorizeStaff(ctx context.Context, actorGUID string) error {
    actor, err := h.Users.GetByID(ctx, actorGUID)
    if err != nil {
        return err
    }
    return access.Authorize(actor, model.RoleWorker, model.RoleAdmin)
}

// respondBookingError maps booking domain errors onto HTTP responses.
func respondBookingError(c echo.Context, message string, err error) error {
    var capErr *CapacityError
    switch {
    case errors.Is(err, access.ErrActorNotFound), errors.Is(err, access.ErrForbidden):
        return respondAccessError(c, err)
    case errors.Is(err, model.ErrInvalidPhone):
        return validationFailed(c, message, err)
    case errors.Is(err, ErrServiceNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": ErrServiceNotFound.Error()})
    case errors.Is(err, ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": ErrBookingNotFound.Error()})
    case errors.Is(err, ErrServiceInPast):
        return c.JSON(http.StatusConflict, echo.Map{"error": ErrServiceInPast.Error()})
    case errors.As(err, &capErr):
        return c.JSON(http.StatusConflict, echo.Map{"error": capErr.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": message})
    }
}

// Create handles POST /booking/new.
func (h *BookingHandler) Create(c echo.Context) error {
    var req CreateBookingInput
    if !bindAndValidate(c, "booking creation failed", &req) {
        return nil
    }
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.CreateBooking(ctx, id, req)
    if err != nil {
        return respondBookingError(c, "booking creation failed", err)
    }
    return c.JSON(http.StatusCreated, b)
}

// GetByID handles GET /booking/:id.  Any authenticated user may read a
// booking.
func (h *BookingHandler) GetByID(c echo.Context) error {
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if err := access.Authorize(actor, model.RoleUser, model.RoleWorker, model.RoleAdmin); err != nil {
        return respondAccessError(c, err)
    }
    b, err := h.Bookings.GetByID(ctx, c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if b == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": ErrBookingNotFound.Error()})
    }
    return c.JSON(http.StatusOK, b)
}

// List handles GET /booking/all.  Staff only.
func (h *BookingHandler) List(c echo.Context) error {
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.authorizeStaff(ctx, id); err != nil {
        return respondAccessError(c, err)
    }
    bookings, err := h.Bookings.List(ctx, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// ChangeStatus handles PATCH /booking/:id/status.
func (h *BookingHandler) ChangeStatus(c echo.Context) error {
    var req struct {
        Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
    }
    if !bindAndValidate(c, "booking status change failed", &req) {
        return nil
    }
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.ChangeBookingStatus(ctx, id, c.Param("id"), model.BookingStatus(req.Status))
    if err != nil {
        return respondBookingError(c, "booking status change failed", err)
    }
    return c.JSON(http.StatusOK, b)
}

// Update handles PUT and PATCH /booking/:id.
func (h *BookingHandler) Update(c echo.Context) error {
    var req UpdateBookingInput
    if !bindAndValidate(c, "booking update failed", &req) {
        return nil
    }
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.UpdateBooking(ctx, id, c.Param("id"), req)
    if err != nil {
        return respondBookingError(c, "booking update failed", err)
    }
    return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /booking/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
    id, err := actorID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.DeleteBooking(ctx, id, c.Param("id")); err != nil {
        return respondBookingError(c, "booking deletion failed", err)
    }
    return c.NoContent(http.StatusNoContent)
}
