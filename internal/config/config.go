package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time parses the token TTL duration
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  It is constructed once at startup and
// passed by value to every component needing it; there is no ambient
// global state.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    Debug        bool          // enable debug-level logging
    Host         string        // network interface to bind
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    JWTSecret    string        // secret used to sign identity tokens
    JWTAlgorithm string        // HMAC algorithm for signing (HS256/HS384/HS512)
    JWTExpiresIn time.Duration // token lifetime; the deployed value is effectively non-expiring
    BcryptCost   int           // bcrypt cost for password hashing
    MaxLimit     int           // upper bound for the pagination 'limit' parameter
    MaxOffset    int           // upper bound for the pagination 'offset' parameter
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),
        Debug:        os.Getenv("DEBUG") == "true",
        Host:         getenvDefault("APP_HOST", "0.0.0.0"),
        Port:         must("APP_PORT"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        JWTSecret:    must("JWT_SECRET"),
        JWTAlgorithm: getenvDefault("JWT_ALGORITHM", "HS256"),
        JWTExpiresIn: mustDur("JWT_EXPIRES_IN", 876000*time.Hour), // ~100 years by default
        BcryptCost:   mustIntDefault("BCRYPT_COST", 10),
        MaxLimit:     mustIntDefault("PAGE_MAX_LIMIT", 100),
        MaxOffset:    mustIntDefault("PAGE_MAX_OFFSET", 10000),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenvDefault returns the variable's value or def when unset.
func getenvDefault(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// mustIntDefault converts the variable into an integer, falling back to
// def when unset.  A value that is set but not an integer is fatal.
func mustIntDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// mustDur parses the variable as a Go duration ("30m", "876000h"), falling
// back to def when unset.  A set but unparsable value is fatal.
func mustDur(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}
