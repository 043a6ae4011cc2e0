package router

import (
    "github.com/labstack/echo/v4"

    "github.com/velezhnev/tourbook/internal/handler"
    "github.com/velezhnev/tourbook/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// that load balancers and monitoring can probe.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  None of them
// require an existing session: signup and signin issue tokens,
// forgot-password looks up a profile by contact, and change-password
// authenticates through its body rather than a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/auth")
    g.POST("/signup", a.Signup)
    g.POST("/signin", a.Signin)
    g.POST("/forgot-password", a.ForgotPassword)
    g.POST("/change-password", a.ChangePassword)
}

// RegisterUsers registers the user directory endpoints.  Every route in
// this group requires a valid access token; the per-operation role
// checks run inside the handlers against the directory record the token
// points at.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
    g := e.Group("/user")
    g.Use(middleware.JWTAuth(jwtSecret))

    // The authenticated user's own profile and bookings.
    g.GET("/me", u.Me)
    g.PUT("/me", u.UpdateMe)
    g.PATCH("/me", u.UpdateMe)
    g.GET("/me/bookings", u.MyBookings)

    // Administrative creation of users, including non-authenticatable
    // guest records without a password.
    g.POST("/new", u.Create)

    // Listings.  /all is staff-only; the role filter is admin-only.
    g.GET("/all", u.ListAll)
    g.GET("/all/:role", u.ListByRole)

    // Per-user operations by guid.  PUT and PATCH are the same full
    // overwrite.
    g.GET("/:id", u.GetByID)
    g.PUT("/:id", u.Update)
    g.PATCH("/:id", u.Update)
    g.DELETE("/:id", u.Delete)
    g.GET("/:id/bookings", u.Bookings)
}

// RegisterServices registers the catalog endpoints.  Reads are public so
// guests can browse before signing up; the listing sits behind the
// response cache.  Writes require a token and a staff role.
func RegisterServices(e *echo.Echo, s *handler.ServiceHandler, jwtSecret string, cache echo.MiddlewareFunc) {
    e.GET("/service/all", s.List, cache)
    e.GET("/service/:id", s.GetByID, cache)

    g := e.Group("/service")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.POST("/new", s.Create)
    g.PUT("/:id", s.Update)
    g.PATCH("/:id", s.Update)
    g.DELETE("/:id", s.Delete)
}

// RegisterBookings registers the booking endpoints.  All of them require
// a token; creation is open to every role while the rest are staff-only
// and enforced in the handlers.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
    g := e.Group("/booking")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.POST("/new", b.Create)
    g.GET("/all", b.List)
    g.GET("/:id", b.GetByID)
    g.PUT("/:id", b.Update)
    g.PATCH("/:id", b.Update)
    g.PUT("/:id/status", b.ChangeStatus)
    g.PATCH("/:id/status", b.ChangeStatus)
    g.DELETE("/:id", b.Delete)
}
