package main

import (
    "context"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/velezhnev/tourbook/internal/config"
    "github.com/velezhnev/tourbook/internal/database"
    "github.com/velezhnev/tourbook/internal/handler"
    "github.com/velezhnev/tourbook/internal/middleware"
    "github.com/velezhnev/tourbook/internal/model"
    "github.com/velezhnev/tourbook/internal/queue"
    "github.com/velezhnev/tourbook/internal/repository"
    "github.com/velezhnev/tourbook/internal/router"
    queue_publisher "github.com/velezhnev/tourbook/internal/service"
    "github.com/velezhnev/tourbook/internal/utils"
)

func main() {
    // Load a local .env if present; real deployments set the environment
    // directly and have no file.
    _ = godotenv.Load()

    cfg := config.Load()

    log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
    if cfg.Debug {
        log.SetLevel(log.DebugLevel)
    }

    db, err := database.Open(cfg)
    if err != nil {
        log.Fatalf("open database: %v", err)
    }
    defer func() { _ = db.Close() }()

    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    services := repository.NewServiceRepo(db)
    bookings := repository.NewBookingRepo(db)

    seedAdmin(cfg, users)

    pub := queue_publisher.NewPublisher(queue.BrokerURL())

    authH := handler.NewAuthHandler(cfg, users)
    userH := handler.NewUserHandler(cfg, users, bookings)
    serviceH := handler.NewServiceHandler(cfg, users, services)
    bookingH := handler.NewBookingHandler(cfg, db, users, services, bookings, pub)

    e := echo.New()
    e.HideBanner = true
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH)
    router.RegisterUsers(e, userH, cfg.JWTSecret)
    router.RegisterServices(e, serviceH, cfg.JWTSecret, cache)
    router.RegisterBookings(e, bookingH, cfg.JWTSecret)

    // Booking commands arrive over the broker too; the consumer runs for
    // the life of the process and reconnects on its own.
    go queue.StartCommandConsumer(bookingH, cfg.JWTSecret)

    addr := cfg.Host + ":" + cfg.Port
    log.Infof("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}

// seedAdmin creates the first administrator when the user directory is
// empty.  ADMIN_PHONE and ADMIN_PASSWORD must both be set; without them
// an empty directory is left alone and signup is the only way in.
func seedAdmin(cfg config.Config, users *repository.UserRepo) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    n, err := users.Count(ctx)
    if err != nil {
        log.Fatalf("count users: %v", err)
    }
    if n > 0 {
        return
    }

    phone := os.Getenv("ADMIN_PHONE")
    password := os.Getenv("ADMIN_PASSWORD")
    if phone == "" || password == "" {
        log.Warn("user directory is empty and ADMIN_PHONE/ADMIN_PASSWORD are not set; skipping admin seed")
        return
    }
    normalized, err := model.NormalizePhone(phone)
    if err != nil {
        log.Fatalf("seed admin: %v", err)
    }
    hash, err := utils.HashPassword(password, cfg.BcryptCost)
    if err != nil {
        log.Fatalf("seed admin: %v", err)
    }
    admin := model.User{Phone: normalized, Password: &hash, Role: model.RoleAdmin}
    if err := users.Create(ctx, &admin); err != nil {
        log.Fatalf("seed admin: %v", err)
    }
    log.Infof("seeded initial admin %s", admin.GUID)
}
