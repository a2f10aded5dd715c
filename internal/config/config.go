package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Credential sources understood by AuthConfig.CredentialSource.
const (
	CredentialSourceStatic   = "static"
	CredentialSourcePostgres = "postgres"
)

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("SECRET_KEY is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Realm    RealmConfig
	Auth     AuthConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// RealmConfig carries the protection domain surfaced in challenge headers.
type RealmConfig struct {
	Domain   string
	Audience string
}

// AuthConfig defines token and login parameters.
type AuthConfig struct {
	Secret []byte
	// TokenQueryParam names the query parameter the gate reads tokens from.
	TokenQueryParam string
	// CredentialSource selects the login verifier: "static" or "postgres".
	CredentialSource string
	LoginUsername    string
	// LoginPasswordHash is a bcrypt hash. LoginPassword is only consulted when
	// no hash is configured and is hashed once at startup.
	LoginPasswordHash string
	LoginPassword     string
	BcryptCost        int
	// MaxFailedLogins caps login attempts per username and client address
	// within FailedLoginWindow. Zero disables the throttle.
	MaxFailedLogins   int
	FailedLoginWindow time.Duration
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from the environment and an optional .env file.
// Variables already present in the environment take precedence over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	source := strings.ToLower(getEnv("AUTH_CREDENTIAL_SOURCE", CredentialSourceStatic))
	if source != CredentialSourceStatic && source != CredentialSourcePostgres {
		return nil, fmt.Errorf("invalid AUTH_CREDENTIAL_SOURCE %q", source)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "auth-gate"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("SERVER_HOST", "localhost"),
			Port:                  getEnv("SERVER_PORT", "5555"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Realm: RealmConfig{
			Domain:   os.Getenv("AXIOMS_DOMAIN"),
			Audience: os.Getenv("AXIOMS_AUDIENCE"),
		},
		Auth: AuthConfig{
			Secret:            []byte(secret),
			TokenQueryParam:   getEnv("AUTH_TOKEN_QUERY_PARAM", "token"),
			CredentialSource:  source,
			LoginUsername:     os.Getenv("AUTH_LOGIN_USERNAME"),
			LoginPasswordHash: os.Getenv("AUTH_LOGIN_PASSWORD_HASH"),
			LoginPassword:     os.Getenv("AUTH_LOGIN_PASSWORD"),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MaxFailedLogins:   getEnvAsInt("AUTH_MAX_FAILED_LOGINS", 0),
			FailedLoginWindow: time.Duration(getEnvAsInt("AUTH_FAILED_LOGIN_WINDOW_SECONDS", 900)) * time.Second,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Auth.CredentialSource == CredentialSourcePostgres && cfg.Postgres.DSN == "" {
		return nil, errors.New("AUTH_CREDENTIAL_SOURCE=postgres requires POSTGRES_DSN")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
