package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Backend names accepted for STORE_BACKEND and SESSION_BACKEND.
const (
	StoreMySQL    = "mysql"  // persist registrations to the registrations table
	StoreCSV      = "csv"    // persist registrations to a per-day, per-agent CSV ledger
	SessionMemory = "memory" // in-process session store (dev/tests)
	SessionRedis  = "redis"  // Redis-backed session store (production)
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	AgentID        string // operator/agent identifier embedded in roll numbers
	SessionSecret  string // secret used to sign session cookie tokens
	SessionTTLMin  int    // idle session time-to-live in minutes
	StoreBackend   string // "mysql" or "csv"
	SessionBackend string // "memory" or "redis"
	UploadDir      string // directory for uploaded and renamed images
	LedgerDir      string // directory for CSV ledger files (csv backend only)
	DBUser         string // database username (mysql backend only)
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Backend selectors
// default to the lightest option so a bare environment still boots.
func Load() Config {
	cfg := Config{
		Env:            must("APP_ENV"),                   // environment (dev/test/prod)
		Port:           must("APP_PORT"),                  // port to bind the HTTP server
		AgentID:        must("AGENT_ID"),                  // agent id, fixed per deployment
		SessionSecret:  must("SESSION_SECRET"),            // cookie signing secret
		SessionTTLMin:  mustInt("SESSION_TTL_MIN"),        // idle session expiry
		StoreBackend:   getEnv("STORE_BACKEND", StoreCSV), // registration persistence target
		SessionBackend: getEnv("SESSION_BACKEND", SessionMemory),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		LedgerDir:      getEnv("LEDGER_DIR", "."),
	}
	// Database variables are only required when the relational backend is
	// selected; the CSV ledger needs none of them.
	if cfg.StoreBackend == StoreMySQL {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	if cfg.StoreBackend != StoreMySQL && cfg.StoreBackend != StoreCSV {
		log.Fatalf("unknown STORE_BACKEND: %q", cfg.StoreBackend)
	}
	if cfg.SessionBackend != SessionMemory && cfg.SessionBackend != SessionRedis {
		log.Fatalf("unknown SESSION_BACKEND: %q", cfg.SessionBackend)
	}
	return cfg
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

// getEnv returns the value of an optional environment variable, falling
// back to the provided default when unset or empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
