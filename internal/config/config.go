package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Storage      StorageConfig
	Wizard       WizardConfig
	RateLimit    RateLimitConfig
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

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines manager authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	// Bootstrap credentials seed one manager into the in-memory store.
	BootstrapManagerEmail    string
	BootstrapManagerPassword string
}

// NotificationConfig selects and configures notification senders.
// A sender with no endpoint configured is skipped.
type NotificationConfig struct {
	EmailFrom      string
	AdminRecipient string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	WebhookURL     string
	KafkaBrokers   []string
	KafkaTopic     string
}

// StorageConfig configures the blob store used for uploads.
type StorageConfig struct {
	RootDir          string
	PublicBaseURL    string
	MaxDocumentBytes int64
	MaxAudioBytes    int64
	LinkTTLSeconds   int
}

// WizardConfig configures the onboarding wizard.
type WizardConfig struct {
	CompanyDomain             string
	SchemaFile                string
	PersistenceTimeoutSeconds int
	DispatchTimeoutSeconds    int
	SessionTTLHours           int
}

// RateLimitConfig bounds upload traffic per client.
type RateLimitConfig struct {
	UploadsPerMinute int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "onboarding-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
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
		Auth: AuthConfig{
			JWTSecret:                getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:    getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:               getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapManagerEmail:    os.Getenv("AUTH_BOOTSTRAP_MANAGER_EMAIL"),
			BootstrapManagerPassword: os.Getenv("AUTH_BOOTSTRAP_MANAGER_PASSWORD"),
		},
		Notification: NotificationConfig{
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			AdminRecipient: os.Getenv("NOTIFY_ADMIN_RECIPIENT"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			WebhookURL:     os.Getenv("NOTIFY_WEBHOOK_URL"),
			KafkaBrokers:   getEnvAsList("NOTIFY_KAFKA_BROKERS"),
			KafkaTopic:     getEnv("NOTIFY_KAFKA_TOPIC", "onboarding.notifications"),
		},
		Storage: StorageConfig{
			RootDir:          getEnv("STORAGE_ROOT_DIR", "data/uploads"),
			PublicBaseURL:    strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/files"), "/"),
			MaxDocumentBytes: int64(getEnvAsInt("STORAGE_MAX_DOCUMENT_BYTES", 10<<20)),
			MaxAudioBytes:    int64(getEnvAsInt("STORAGE_MAX_AUDIO_BYTES", 20<<20)),
			LinkTTLSeconds:   getEnvAsInt("STORAGE_LINK_TTL_SECONDS", 900),
		},
		Wizard: WizardConfig{
			CompanyDomain:             getEnv("WIZARD_COMPANY_DOMAIN", "example.com"),
			SchemaFile:                os.Getenv("WIZARD_SCHEMA_FILE"),
			PersistenceTimeoutSeconds: getEnvAsInt("WIZARD_PERSISTENCE_TIMEOUT_SECONDS", 10),
			DispatchTimeoutSeconds:    getEnvAsInt("WIZARD_DISPATCH_TIMEOUT_SECONDS", 15),
			SessionTTLHours:           getEnvAsInt("WIZARD_SESSION_TTL_HOURS", 72),
		},
		RateLimit: RateLimitConfig{
			UploadsPerMinute: getEnvAsInt("RATE_LIMIT_UPLOADS_PER_MINUTE", 30),
		},
	}

	if cfg.Wizard.CompanyDomain == "" || strings.Contains(cfg.Wizard.CompanyDomain, "@") {
		return nil, fmt.Errorf("invalid WIZARD_COMPANY_DOMAIN %q", cfg.Wizard.CompanyDomain)
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

// AccessTokenTTL returns the lifetime of issued manager tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// PersistenceTimeout bounds a single draft write.
func (w WizardConfig) PersistenceTimeout() time.Duration {
	return seconds(w.PersistenceTimeoutSeconds, 10)
}

// LinkTTL is how long a signed file link stays valid.
func (s StorageConfig) LinkTTL() time.Duration {
	return seconds(s.LinkTTLSeconds, 900)
}

// DispatchTimeout bounds a single notification dispatch.
func (w WizardConfig) DispatchTimeout() time.Duration {
	return seconds(w.DispatchTimeoutSeconds, 15)
}

// SessionTTL is how long an idle wizard session survives.
func (w WizardConfig) SessionTTL() time.Duration {
	if w.SessionTTLHours <= 0 {
		return 72 * time.Hour
	}
	return time.Duration(w.SessionTTLHours) * time.Hour
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
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

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
