package app

import (
	"time"

	accountsapi "accounts/cmd/internal/accounts/api"
)

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	ShutdownTimeout   time.Duration

	// DatabaseURL selects the account store by scheme:
	// empty is in-memory, postgres:// (or postgresql://) is pgx, mongodb:// (or mongodb+srv://) is mongo.
	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	DBSchema      string
	MongoDatabase string
	RunMigrations bool

	// If true, /readyz returns 503 unless a database is configured and reachable.
	ReadinessRequireDB bool

	CredentialCodec string

	MailTransport string
	SMTPAddr      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	MailQueueSize int
	MailWorkers   int
	MailTimeout   time.Duration
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("ACCOUNTS_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("ACCOUNTS_LOG_LEVEL", "info"),
		LogFormat: EnvString("ACCOUNTS_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("ACCOUNTS_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("ACCOUNTS_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("ACCOUNTS_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("ACCOUNTS_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("ACCOUNTS_SHUTDOWN_TIMEOUT", 10*time.Second),

		MaxHeaderBytes: EnvInt("ACCOUNTS_HTTP_MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:   EnvInt64("ACCOUNTS_MAX_BODY_BYTES", accountsapi.DefaultMaxBodyBytes),

		DatabaseURL:   EnvString("ACCOUNTS_DATABASE_URL", ""),
		DBMaxConns:    EnvInt32("ACCOUNTS_DB_MAX_CONNS", 10),
		DBMinConns:    EnvInt32("ACCOUNTS_DB_MIN_CONNS", 0),
		DBSchema:      EnvString("ACCOUNTS_DB_SCHEMA", "accounts"),
		MongoDatabase: EnvString("ACCOUNTS_MONGO_DATABASE", "accounts"),
		RunMigrations: EnvBool("ACCOUNTS_RUN_MIGRATIONS", true),

		ReadinessRequireDB: EnvBool("ACCOUNTS_READINESS_REQUIRE_DB", false),

		CredentialCodec: EnvString("ACCOUNTS_CREDENTIAL_CODEC", "sha256"),

		MailTransport: EnvString("ACCOUNTS_MAIL_TRANSPORT", "log"),
		SMTPAddr:      EnvString("ACCOUNTS_SMTP_ADDR", ""),
		SMTPFrom:      EnvString("ACCOUNTS_SMTP_FROM", ""),
		SMTPUsername:  EnvString("ACCOUNTS_SMTP_USERNAME", ""),
		SMTPPassword:  EnvString("ACCOUNTS_SMTP_PASSWORD", ""),
		MailQueueSize: EnvInt("ACCOUNTS_MAIL_QUEUE_SIZE", 256),
		MailWorkers:   EnvInt("ACCOUNTS_MAIL_WORKERS", 2),
		MailTimeout:   EnvDuration("ACCOUNTS_MAIL_TIMEOUT", 30*time.Second),
	}
}
