package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/config"
    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/repository"
    "github.com/velezhnev/tourbook/internal/utils"
)

// AuthHandler bundles dependencies for the authentication endpoints:
// signup, signin, forgot-password and change-password.  All four are
// public; tokens are issued here and verified by middleware everywhere
// else.
type AuthHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type signupReq struct {
    FirstName  *string `json:"first_name"`
    LastName   *string `json:"last_name"`
    MiddleName *string `json:"middle_name"`
    Phone      string  `json:"phone" validate:"required"`
    Email      *string `json:"email" validate:"omitempty,email"`
    Password   string  `json:"password" validate:"required,min=6"`
    Role       string  `json:"role" validate:"omitempty,oneof=admin worker user"`
}

type signinReq struct {
    Phone    string `json:"phone" validate:"required_without=Email"`
    Email    string `json:"email" validate:"omitempty,email"`
    Password string `json:"password" validate:"required"`
}

type forgotPasswordReq struct {
    Phone string `json:"phone" validate:"required_without=Email"`
    Email string `json:"email" validate:"omitempty,email"`
}

type changePasswordReq struct {
    GUID     string `json:"guid" validate:"required,uuid4"`
    Password string `json:"password" validate:"required,min=6"`
}

type tokenResp struct {
    AccessToken string `json:"access_token"`
}

// Signup registers a new user and returns an identity token.  The phone
// is normalized before the uniqueness lookups, so two spellings of the
// same number collide.  Uniqueness is checked by lookup prior to insert;
// the database constraint backstops the race window.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if !bindAndValidate(c, "signup failed", &req) {
        return nil
    }
    phone, err := model.NormalizePhone(req.Phone)
    if err != nil {
        return validationFailed(c, "signup failed", err)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if existing, err := h.Users.GetByPhone(ctx, phone); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    } else if existing != nil {
        log.Warnf("signup: phone %s already registered", phone)
        return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this phone number already exists"})
    }
    if req.Email != nil && *req.Email != "" {
        email := strings.ToLower(strings.TrimSpace(*req.Email))
        req.Email = &email
        if existing, err := h.Users.GetByEmail(ctx, email); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
        } else if existing != nil {
            log.Warnf("signup: email %s already registered", email)
            return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this email already exists"})
        }
    }

    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    role := model.RoleUser
    if req.Role != "" {
        role = model.UserRole(req.Role)
    }
    u := model.User{
        FirstName:  req.FirstName,
        LastName:   req.LastName,
        MiddleName: req.MiddleName,
        Phone:      phone,
        Email:      req.Email,
        Password:   &hash,
        Role:       role,
    }
    if err := h.Users.Create(ctx, &u); err != nil {
        if err == repository.ErrDuplicate {
            return c.JSON(http.StatusConflict, echo.Map{"error": "a user with this phone number or email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    token, err := utils.IssueToken(h.Cfg.JWTSecret, h.Cfg.JWTAlgorithm, u.GUID, h.Cfg.JWTExpiresIn)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    log.Debugf("user %s registered", u.GUID)
    return c.JSON(http.StatusOK, tokenResp{AccessToken: token})
}

// Signin verifies credentials by phone or email and returns a fresh
// identity token.  Guest users created implicitly during booking carry no
// password and can never authenticate.
func (h *AuthHandler) Signin(c echo.Context) error {
    var req signinReq
    if !bindAndValidate(c, "signin failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.lookupByContact(ctx, req.Phone, req.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if u == nil || !u.Authenticatable() || !utils.VerifyPassword(*u.Password, req.Password) {
        log.Warnf("signin: invalid credentials for %s%s", req.Phone, req.Email)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid login or password"})
    }

    token, err := utils.IssueToken(h.Cfg.JWTSecret, h.Cfg.JWTAlgorithm, u.GUID, h.Cfg.JWTExpiresIn)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    log.Debugf("user %s signed in", u.GUID)
    return c.JSON(http.StatusOK, tokenResp{AccessToken: token})
}

// ForgotPassword looks a user up by phone or email and returns the
// profile without credentials, enabling the recovery flow.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotPasswordReq
    if !bindAndValidate(c, "password recovery failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.lookupByContact(ctx, req.Phone, req.Email)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if u == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, u)
}

// ChangePassword replaces a user's password hash and returns a fresh
// token.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    var req changePasswordReq
    if !bindAndValidate(c, "password change failed", &req) {
        return nil
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, req.GUID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if u == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    if err := h.Users.UpdatePassword(ctx, u.GUID, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
    }

    token, err := utils.IssueToken(h.Cfg.JWTSecret, h.Cfg.JWTAlgorithm, u.GUID, h.Cfg.JWTExpiresIn)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }
    log.Debugf("user %s changed password", u.GUID)
    return c.JSON(http.StatusOK, tokenResp{AccessToken: token})
}

// lookupByContact resolves a user by phone first, then by email.  The
// phone is normalized before lookup; an unparsable phone simply yields no
// match so that signin failures stay indistinguishable.
func (h *AuthHandler) lookupByContact(ctx context.Context, phone, email string) (*model.User, error) {
    if phone != "" {
        if normalized, err := model.NormalizePhone(phone); err == nil {
            if u, err := h.Users.GetByPhone(ctx, normalized); err != nil || u != nil {
                return u, err
            }
        }
    }
    if email != "" {
        return h.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
    }
    return nil, nil
}
