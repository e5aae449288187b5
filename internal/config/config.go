package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	State     StateConfig     `mapstructure:"state"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Event     EventConfig     `mapstructure:"event"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mail      MailConfig      `mapstructure:"mail"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	QR        QRConfig        `mapstructure:"qr"`
	Bootstrap BootstrapConfig `mapstructure:"bootstrap"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Backend  string         `mapstructure:"backend"` // "postgres" | "memory"
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type JWTConfig struct {
	SigningKey     string        `mapstructure:"signing_key"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EventConfig seeds the event settings row the first time it is read.
type EventConfig struct {
	Name                  string  `mapstructure:"name"`
	Type                  string  `mapstructure:"type"`
	Date                  string  `mapstructure:"date"`
	Time                  string  `mapstructure:"time"`
	Venue                 string  `mapstructure:"venue"`
	Location              string  `mapstructure:"location"`
	IndividualPrice       float64 `mapstructure:"individual_price"`
	BulkPrice             float64 `mapstructure:"bulk_price"`
	BulkTeamSize          int     `mapstructure:"bulk_team_size"`
	Currency              string  `mapstructure:"currency"`
	UPIID                 string  `mapstructure:"upi_id"`
	OrganizationName      string  `mapstructure:"organization_name"`
	SupportEmail          string  `mapstructure:"support_email"`
	ApprovalEmailSubject  string  `mapstructure:"approval_email_subject"`
	RejectionEmailSubject string  `mapstructure:"rejection_email_subject"`
}

type StorageConfig struct {
	Backend       string         `mapstructure:"backend"` // "local" | "firebase"
	MaxUploadSize int64          `mapstructure:"max_upload_size"`
	Timeout       time.Duration  `mapstructure:"timeout"`
	Local         LocalStorage   `mapstructure:"local"`
	Firebase      FirebaseConfig `mapstructure:"firebase"`
}

type LocalStorage struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	Bucket          string `mapstructure:"bucket"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type MailConfig struct {
	Backend   string         `mapstructure:"backend"` // "log" | "smtp" | "sendgrid"
	FromEmail string         `mapstructure:"from_email"`
	FromName  string         `mapstructure:"from_name"`
	Timeout   time.Duration  `mapstructure:"timeout"`
	SMTP      SMTPConfig     `mapstructure:"smtp"`
	SendGrid  SendGridConfig `mapstructure:"sendgrid"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type QueueConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	URL         string `mapstructure:"url"`
	Exchange    string `mapstructure:"exchange"`
	Queue       string `mapstructure:"queue"`
	RoutingKey  string `mapstructure:"routing_key"`
	Prefetch    int    `mapstructure:"prefetch"`
	ConsumerTag string `mapstructure:"consumer_tag"`
}

type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	ReminderSpec string        `mapstructure:"reminder_spec"`
	ReminderLead time.Duration `mapstructure:"reminder_lead"`
}

type QRConfig struct {
	Size       int    `mapstructure:"size"`
	SigningKey string `mapstructure:"signing_key"`
}

// BootstrapConfig describes the superadmin created when the admins table is empty.
type BootstrapConfig struct {
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

// Load overlays an optional .env file, reads config.yaml, overlays environment
// variables, and returns Config.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_POSTGRES_HOST -> database.postgres.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.graceful_shutdown_timeout", 10*time.Second)

	v.SetDefault("database.backend", "postgres")
	v.SetDefault("state.backend", "memory")
	v.SetDefault("jwt.issuer", "registrar")
	v.SetDefault("jwt.access_token_ttl", 12*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("event.name", "Event")
	v.SetDefault("event.date", "2025-09-20")
	v.SetDefault("event.time", "09:00")
	v.SetDefault("event.venue", "Offline")
	v.SetDefault("event.location", "BWA JHDR, Kattangal, Kerala 673601, India")
	v.SetDefault("event.individual_price", 500)
	v.SetDefault("event.bulk_price", 2000)
	v.SetDefault("event.bulk_team_size", 4)
	v.SetDefault("event.currency", "INR")
	v.SetDefault("event.upi_id", "yourupiid@bank")
	v.SetDefault("event.organization_name", "Event Ticketing System")
	v.SetDefault("event.support_email", "support@eventticketing.com")
	v.SetDefault("event.approval_email_subject", "🎉 Registration Confirmed!")
	v.SetDefault("event.rejection_email_subject", "❌ Payment Verification Issue")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.max_upload_size", 10<<20)
	v.SetDefault("storage.timeout", 20*time.Second)
	v.SetDefault("storage.local.dir", "uploads")
	v.SetDefault("storage.local.base_url", "/uploads")

	v.SetDefault("mail.backend", "log")
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.smtp.port", 587)

	v.SetDefault("queue.exchange", "notifications")
	v.SetDefault("queue.queue", "notifications.email")
	v.SetDefault("queue.routing_key", "notification.email")
	v.SetDefault("queue.prefetch", 10)
	v.SetDefault("queue.consumer_tag", "registrar-notifier")

	v.SetDefault("scheduler.reminder_spec", "0 0 9 * * *")
	v.SetDefault("scheduler.reminder_lead", 24*time.Hour)

	v.SetDefault("qr.size", 256)
}
