// Package config loads application configuration from environment
// variables.  cmd/server loads a .env file first, so every value here
// can live in either place.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The durable-backend values
// are only consulted when STORE_BACKEND selects that backend; a failed
// connection at startup degrades to the in-memory store instead of
// aborting.
type Config struct {
	Env          string // application environment (dev/test/prod)
	Port         string // HTTP port to listen on
	StoreBackend string // "memory", "mysql" or "mongo"

	DBUser string // MySQL username
	DBPass string // MySQL password (optional)
	DBHost string // MySQL host
	DBPort string // MySQL port
	DBName string // MySQL database name

	MongoURI  string // MongoDB connection URI
	MongoName string // MongoDB database name

	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	SeedCatalog bool // insert the starter catalog when products are empty
}

// Load reads configuration from the environment.  Only JWT_SECRET is
// required; everything else has a development default.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "8080"),
		StoreBackend:   envStr("STORE_BACKEND", "mysql"),
		DBUser:         envStr("DB_USER", "storefront"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         envStr("DB_HOST", "localhost"),
		DBPort:         envStr("DB_PORT", "3306"),
		DBName:         envStr("DB_NAME", "storefront"),
		MongoURI:       envStr("MONGO_URI", "mongodb://localhost:27017"),
		MongoName:      envStr("MONGO_DB", "storefront"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 30),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		SeedCatalog:    envBool("SEED_CATALOG", true),
	}
}

// must retrieves a required environment variable.  If the variable is
// unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
