package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.  PlaceDefaultLat/PlaceDefaultLng are optional: when both are
// set, every created place is pinned to that coordinate pair instead of the
// coordinates submitted by the client.
type Config struct {
    Env             string   // application environment (e.g. "dev", "prod")
    Port            string   // HTTP port to listen on
    DBUser          string   // database username
    DBPass          string   // database password (optional)
    DBHost          string   // database host address
    DBPort          string   // database port number
    DBName          string   // database name
    JWTSecret       string   // secret used to sign JWTs
    AccessTTLMin    int      // access token time‑to‑live in minutes
    BcryptCost      int      // bcrypt cost for password hashing
    PlaceDefaultLat *float64 // optional fixed latitude for created places
    PlaceDefaultLng *float64 // optional fixed longitude for created places
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The token TTL
// defaults to 60 minutes (one hour) when ACCESS_TOKEN_TTL_MIN is unset.
func Load() Config {
    return Config{
        Env:             must("APP_ENV"),                    // environment (dev/test/prod)
        Port:            must("APP_PORT"),                   // port to bind the HTTP server
        DBUser:          must("DB_USER"),                    // database user
        DBPass:          os.Getenv("DB_PASS"),               // database password (empty allowed)
        DBHost:          must("DB_HOST"),                    // database host
        DBPort:          must("DB_PORT"),                    // database port
        DBName:          must("DB_NAME"),                    // database name
        JWTSecret:       must("JWT_SECRET"),                 // secret used for signing JWTs
        AccessTTLMin:    envInt("ACCESS_TOKEN_TTL_MIN", 60), // TTL for access tokens in minutes
        BcryptCost:      mustInt("BCRYPT_COST"),             // bcrypt cost factor
        PlaceDefaultLat: optFloat("PLACE_DEFAULT_LAT"),      // optional pinned latitude
        PlaceDefaultLng: optFloat("PLACE_DEFAULT_LNG"),      // optional pinned longitude
    }
}

// PinnedLocation reports whether created places should use the configured
// coordinate pair.  Both the latitude and longitude override must be set;
// a single value on its own is ignored.
func (c Config) PinnedLocation() (lat, lng float64, ok bool) {
    if c.PlaceDefaultLat == nil || c.PlaceDefaultLng == nil {
        return 0, 0, false
    }
    return *c.PlaceDefaultLat, *c.PlaceDefaultLng, true
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// envInt parses an optional integer variable, falling back to the default
// when the variable is unset or malformed.
func envInt(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}

// optFloat parses an optional float variable.  Unset or empty values return
// nil; a malformed value is a fatal configuration error because silently
// ignoring it would pin places to the wrong location.
func optFloat(key string) *float64 {
    s := os.Getenv(key)
    if s == "" {
        return nil
    }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        log.Fatalf("invalid float for %s: %q", key, s)
    }
    return &f
}
