package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential is one username/password pair from the static login table.
// Passwords are plain configuration values; this deployment has two users
// and no registration flow.
type Credential struct {
	Username string
	Password string
}

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	DBPath    string
	StaticDir string // web client, served at / when the directory exists

	// Auth
	JWTSecret string
	TokenTTL  time.Duration
	Users     []Credential
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout: mustGetDuration("SHUTDOWN_TIMEOUT"),
		DBPath:          getenvDefault("DB_PATH", "examtrainer.db"),
		StaticDir:       getenvDefault("STATIC_DIR", "public"),
		JWTSecret:       mustGetenv("JWT_SECRET"),
		TokenTTL:        getenvDuration("TOKEN_TTL", 24*time.Hour),
		Users:           mustParseUsers(os.Getenv("QUIZ_USERS")),
	}
}

// mustParseUsers parses "ana:secret,luis:clave" into the credential table.
func mustParseUsers(v string) []Credential {
	if v == "" {
		log.Fatalf("config: required environment variable QUIZ_USERS is not set")
	}
	var creds []Credential
	for _, pair := range strings.Split(v, ",") {
		user, pass, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || user == "" || pass == "" {
			log.Fatalf("config: QUIZ_USERS entry %q is not of the form user:password", pair)
		}
		creds = append(creds, Credential{Username: user, Password: pass})
	}
	return creds
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}
