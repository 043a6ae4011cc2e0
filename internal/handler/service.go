package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/access"
    "github.com/velezhnev/tourbook/internal/config"
    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/repository"
)

// ServiceHandler implements the service catalog endpoints.  Listing and
// reads are public; every write requires a worker or admin actor.
type ServiceHandler struct {
    Cfg      config.Config
    Users    *repository.UserRepo
    Services *repository.ServiceRepo
}

// NewServiceHandler constructs a ServiceHandler.
func NewServiceHandler(cfg config.Config, users *repository.UserRepo, services *repository.ServiceRepo) *ServiceHandler {
    return &ServiceHandler{Cfg: cfg, Users: users, Services: services}
}

type serviceReq struct {
    Name             string `json:"name" validate:"required"`
    Description      string `json:"description"`
    Price            int64  `json:"price" validate:"gte=0"`
    DateTime         string `json:"datetime" validate:"required"`
    Duration         string `json:"duration"`
    MaxNumberPersons int    `json:"max_number_persons" validate:"required,gte=1"`
    Type             string `json:"type" validate:"required,oneof=tour rent"`
}

func (h *ServiceHandler) staffActor(ctx context.Context, c echo.Context) (*model.User, bool) {
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
    if err := access.Authorize(actor, model.RoleWorker, model.RoleAdmin); err != nil {
        _ = respondAccessError(c, err)
        return nil, false
    }
    return actor, true
}

// Create adds a service to the catalog.  A service with the same name,
// price, datetime, capacity and type already in the catalog is a
// conflict.
func (h *ServiceHandler) Create(c echo.Context) error {
    var req serviceReq
    if !bindAndValidate(c, "service creation failed", &req) {
        return nil
    }
    dt, err := model.ParseDateTime(req.DateTime)
    if err != nil {
        return validationFailed(c, "service creation failed", err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.staffActor(ctx, c)
    if !ok {
        return nil
    }

    existing, err := h.Services.GetByFields(ctx, req.Name, req.Price, dt, req.MaxNumberPersons, model.ServiceType(req.Type))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if existing != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": "an identical service already exists"})
    }

    s := model.Service{
        Name:             req.Name,
        Description:      req.Description,
        Price:            req.Price,
        DateTime:         dt,
        Duration:         req.Duration,
        MaxNumberPersons: req.MaxNumberPersons,
        Type:             model.ServiceType(req.Type),
    }
    if err := h.Services.Create(ctx, &s); err != nil {
        if err == repository.ErrDuplicate {
            return c.JSON(http.StatusConflict, echo.Map{"error": "an identical service already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
    }
    log.Debugf("user %s: created service %s", actor.GUID, s.GUID)
    return c.JSON(http.StatusCreated, s)
}

// GetByID returns a single service; no authentication required.
func (h *ServiceHandler) GetByID(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Services.GetByID(ctx, c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if s == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
    }
    return c.JSON(http.StatusOK, s)
}

// List returns the catalog ordered by scheduled datetime; no
// authentication required.  An optional ?type= query parameter narrows
// the listing to one service type.
func (h *ServiceHandler) List(c echo.Context) error {
    typ := c.QueryParam("type")
    if typ != "" && !model.ValidServiceType(typ) {
        return c.JSON(http.StatusBadRequest, validationEnvelope{
            Message: "service listing failed",
            Errors:  []string{"type must be one of tour, rent"},
        })
    }
    limit, offset, ok := pagination(c, h.Cfg)
    if !ok {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    var (
        services []model.Service
        err      error
    )
    if typ != "" {
        services, err = h.Services.ListByType(ctx, model.ServiceType(typ), limit, offset)
    } else {
        services, err = h.Services.List(ctx, limit, offset)
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"services": services})
}

// Update overwrites all fields of a service.  PUT and PATCH behave
// identically.
func (h *ServiceHandler) Update(c echo.Context) error {
    var req serviceReq
    if !bindAndValidate(c, "service update failed", &req) {
        return nil
    }
    dt, err := model.ParseDateTime(req.DateTime)
    if err != nil {
        return validationFailed(c, "service update failed", err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.staffActor(ctx, c)
    if !ok {
        return nil
    }

    s, err := h.Services.GetByID(ctx, c.Param("id"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if s == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
    }

    s.Name = req.Name
    s.Description = req.Description
    s.Price = req.Price
    s.DateTime = dt
    s.Duration = req.Duration
    s.MaxNumberPersons = req.MaxNumberPersons
    s.Type = model.ServiceType(req.Type)
    if err := h.Services.Update(ctx, s); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update service failed"})
    }
    updated, err := h.Services.GetByID(ctx, s.GUID)
    if err != nil || updated == nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reload service failed"})
    }
    log.Debugf("user %s: updated service %s", actor.GUID, s.GUID)
    return c.JSON(http.StatusOK, updated)
}

// Delete removes a service and all bookings referencing it.
func (h *ServiceHandler) Delete(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    actor, ok := h.staffActor(ctx, c)
    if !ok {
        return nil
    }

    targetID := c.Param("id")
    if err := h.Services.Delete(ctx, targetID); err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete service failed"})
    }
    log.Debugf("user %s: deleted service %s", actor.GUID, targetID)
    return c.NoContent(http.StatusNoContent)
}
