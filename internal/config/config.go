package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and URLs, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	BcryptCost     int    // bcrypt cost for password hashing
	AccessTTLHours int    // auth token time‑to‑live in hours
	RefreshTTLDays int    // refresh token time‑to‑live in days
	SessionTTLHrs  int    // per-device session row time‑to‑live in hours
	ResetTTLMin    int    // password reset token time‑to‑live in minutes
	UploadDir      string // directory where uploaded song files are stored
	PublicBaseURL  string // external base URL used when building file links
	ITunesBaseURL  string // upstream catalog API base
	LyricsBaseURL  string // upstream lyrics API base
	AMQPURL        string // RabbitMQ URL; empty disables the broker
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		BcryptCost:     mustInt("BCRYPT_COST"),
		AccessTTLHours: optInt("AUTH_TOKEN_TTL_HOURS", 24),
		RefreshTTLDays: optInt("REFRESH_TOKEN_TTL_DAYS", 7),
		SessionTTLHrs:  optInt("SESSION_TTL_HOURS", 2),
		ResetTTLMin:    optInt("RESET_TOKEN_TTL_MIN", 60),
		UploadDir:      getenv("UPLOAD_DIR", "uploads/songs"),
		PublicBaseURL:  getenv("PUBLIC_BASE_URL", ""),
		ITunesBaseURL:  getenv("ITUNES_BASE_URL", "https://itunes.apple.com"),
		LyricsBaseURL:  getenv("LYRICS_BASE_URL", "https://api.lyrics.ovh/v1"),
		AMQPURL:        os.Getenv("AMQP_URL"), // empty means notifications are stored directly
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

// optInt reads an optional integer variable, falling back to a default when
// the variable is unset or malformed.
func optInt(key string, def int) int {
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
