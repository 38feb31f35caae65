package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MaxUploadBytes  int64

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string
	CacheTTL      time.Duration

	// Media store configuration
	MediaBackend        string
	MediaFolder         string
	MediaPublicURL      string
	MediaBucket         string
	MediaEndpoint       string
	MediaAccessKey      string
	MediaSecretKey      string
	MediaUseSSL         bool
	MediaPublicPolicy   bool
	AWSRegion           string
	RabbitMQURL         string
	MediaCleanupQueue   string
	MediaCleanupWorkers int

	// Admin auth configuration
	JWTSecret         string
	AdminPasswordHash string
	TokenTTL          time.Duration
	MutationLimit     int
	MutationWindow    time.Duration
	LoginLimit        int
	LoginWindow       time.Duration

	// Logging configuration
	LogLevel         string
	LogFormat        string
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
	LogMaxAgeDays    int
	LogCompress      bool
	OTLPLogsEndpoint string
	ServiceName      string
}

// secretKeys are read from SECRETS_DIR when present and override env values.
var secretKeys = []string{
	"db_user",
	"db_password",
	"redis_password",
	"redis_url",
	"media_access_key",
	"media_secret_key",
	"rabbitmq_url",
	"jwt_secret",
	"admin_password_hash",
}

// LoadConfig builds a Config from defaults, an optional YAML file (CONFIG_FILE),
// .env files, environment variables and Docker secrets, in increasing precedence.
func LoadConfig() (*Config, error) {
	for _, envFile := range []string{".env", ".env.local"} {
		// Missing .env files are fine
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			v.Set(name, value)
		}
	}

	cfg := fromViper(v)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("max_upload_bytes", 10<<20)

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "recipes")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "recipes.db")
	v.SetDefault("migrations_dir", "migrations")

	v.SetDefault("redis_host", "")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", "5m")

	v.SetDefault("media_backend", "s3")
	v.SetDefault("media_folder", "recipes")
	v.SetDefault("media_public_url", "")
	v.SetDefault("media_bucket", "recipe-images")
	v.SetDefault("media_endpoint", "")
	v.SetDefault("media_access_key", "")
	v.SetDefault("media_secret_key", "")
	v.SetDefault("media_use_ssl", true)
	v.SetDefault("media_public_policy", false)
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("media_cleanup_queue", "media.delete")
	v.SetDefault("media_cleanup_workers", 1)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("token_ttl", "12h")
	v.SetDefault("mutation_limit", 60)
	v.SetDefault("mutation_window", "1h")
	v.SetDefault("login_limit", 10)
	v.SetDefault("login_window", "15m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 128)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 16)
	v.SetDefault("log_compress", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("service_name", "recipes-api")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("server_port"),
		ServerHost:      v.GetString("server_host"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),

		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		DBSSLMode:     v.GetString("db_ssl_mode"),
		SQLitePath:    v.GetString("sqlite_path"),
		MigrationsDir: v.GetString("migrations_dir"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      v.GetString("redis_url"),
		CacheTTL:      v.GetDuration("cache_ttl"),

		MediaBackend:        strings.ToLower(v.GetString("media_backend")),
		MediaFolder:         v.GetString("media_folder"),
		MediaPublicURL:      strings.TrimRight(v.GetString("media_public_url"), "/"),
		MediaBucket:         v.GetString("media_bucket"),
		MediaEndpoint:       v.GetString("media_endpoint"),
		MediaAccessKey:      v.GetString("media_access_key"),
		MediaSecretKey:      v.GetString("media_secret_key"),
		MediaUseSSL:         v.GetBool("media_use_ssl"),
		MediaPublicPolicy:   v.GetBool("media_public_policy"),
		AWSRegion:           v.GetString("aws_region"),
		RabbitMQURL:         v.GetString("rabbitmq_url"),
		MediaCleanupQueue:   v.GetString("media_cleanup_queue"),
		MediaCleanupWorkers: v.GetInt("media_cleanup_workers"),

		JWTSecret:         v.GetString("jwt_secret"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
		TokenTTL:          v.GetDuration("token_ttl"),
		MutationLimit:     v.GetInt("mutation_limit"),
		MutationWindow:    v.GetDuration("mutation_window"),
		LoginLimit:        v.GetInt("login_limit"),
		LoginWindow:       v.GetDuration("login_window"),

		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		LogFile:          v.GetString("log_file"),
		LogMaxSizeMB:     v.GetInt("log_max_size_mb"),
		LogMaxBackups:    v.GetInt("log_max_backups"),
		LogMaxAgeDays:    v.GetInt("log_max_age_days"),
		LogCompress:      v.GetBool("log_compress"),
		OTLPLogsEndpoint: v.GetString("otel_exporter_otlp_endpoint"),
		ServiceName:      v.GetString("service_name"),
	}
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// AdminEnabled reports whether mutating routes are protected by admin login
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// RedisEnabled reports whether a redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
