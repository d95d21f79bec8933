package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr      string
	GinMode       string
	LogLevel      string
	LogFormat     string
	SessionSecret string
	AuthRequired  bool

	Database      DatabaseConfig
	OIDC          OIDCConfig
	AfricaTalking AfricaTalkingConfig
	Email         EmailConfig
	RateLimit     RateLimitConfig
}

type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	URL        string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	TimeZone   string
	SQLitePath string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() Config {
	return Config{
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8080"),
		GinMode:       getEnvOrDefault("GIN_MODE", "release"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AuthRequired:  getBoolEnv("AUTH_REQUIRED", false),
		Database:      LoadDatabaseConfig(),
		OIDC:          LoadOIDCConfig(),
		AfricaTalking: LoadAfricaTalkingConfig(),
		Email:         LoadEmailConfig(),
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloatEnv("RATE_LIMIT_RPS", 0),
			Burst:             getIntEnv("RATE_LIMIT_BURST", 20),
		},
	}
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:     getEnvOrDefault("DB_DRIVER", "postgres"),
		URL:        os.Getenv("DATABASE_URL"),
		Host:       getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:       getEnvOrDefault("POSTGRES_USER", "ecommerce"),
		Password:   os.Getenv("POSTGRES_PASSWORD"),
		Name:       getEnvOrDefault("POSTGRES_DB", "e_commerce"),
		Port:       getEnvOrDefault("DB_PORT", "5432"),
		SSLMode:    getEnvOrDefault("DB_SSLMODE", "disable"),
		TimeZone:   getEnvOrDefault("DB_TIMEZONE", "UTC"),
		SQLitePath: getEnvOrDefault("SQLITE_PATH", "ecommerce.db"),
	}
}

func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"),
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

// DSN builds the postgres connection string. DATABASE_URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// MigrateURL is the URL form golang-migrate expects. Validate rejects a
// DATABASE_URL that is not already one.
func (d DatabaseConfig) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (o OIDCConfig) Enabled() bool {
	return o.Issuer != ""
}

func (a AfricaTalkingConfig) Enabled() bool {
	return a.Username != "" && a.APIKey != ""
}

func (e EmailConfig) Enabled() bool {
	return e.SenderEmail != ""
}

func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Password == "" {
			errs = append(errs, errors.New("POSTGRES_PASSWORD or DATABASE_URL must be set"))
		}
		if c.Database.URL != "" && !isPostgresURL(c.Database.URL) {
			errs = append(errs, errors.New("DATABASE_URL must be a postgres:// URL, not a key=value DSN"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}

	if c.OIDC.Enabled() {
		if c.SessionSecret == "" {
			errs = append(errs, errors.New("SESSION_SECRET must be set when OIDC is enabled"))
		}
		if c.OIDC.ClientID == "" {
			errs = append(errs, errors.New("OIDC_CLIENT_ID must be set when OIDC is enabled"))
		}
	}
	if c.AuthRequired && !c.OIDC.Enabled() {
		errs = append(errs, errors.New("AUTH_REQUIRED needs OIDC_ISSUER"))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must not be negative"))
	}

	return errors.Join(errs...)
}

// isPostgresURL accepts the URL form both gorm and golang-migrate read.
func isPostgresURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "postgres" || u.Scheme == "postgresql") && u.Host != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getIntEnv(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
