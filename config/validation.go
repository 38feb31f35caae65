package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	supportedDBDrivers     = []string{"postgres", "sqlite"}
	supportedMediaBackends = []string{"s3", "minio", "memory"}
)

// ValidateConfig checks the configuration against the requirements of the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []string
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg}.Error())
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "is required")
	}
	if !contains(supportedDBDrivers, cfg.DBDriver) {
		add("DB_DRIVER", fmt.Sprintf("must be one of %s", strings.Join(supportedDBDrivers, ", ")))
	}
	if !contains(supportedMediaBackends, cfg.MediaBackend) {
		add("MEDIA_BACKEND", fmt.Sprintf("must be one of %s", strings.Join(supportedMediaBackends, ", ")))
	}
	if cfg.MediaFolder == "" {
		add("MEDIA_FOLDER", "is required")
	}
	if cfg.MediaBackend == "minio" {
		if cfg.MediaEndpoint == "" {
			add("MEDIA_ENDPOINT", "is required for the minio backend")
		}
		if cfg.MediaAccessKey == "" || cfg.MediaSecretKey == "" {
			add("media_access_key", "minio credentials are required")
		}
	}
	if cfg.AdminEnabled() && cfg.JWTSecret == "" {
		add("jwt_secret", "is required when admin login is enabled")
	}
	if cfg.MaxUploadBytes <= 0 {
		add("MAX_UPLOAD_BYTES", "must be positive")
	}

	if env == Production {
		if cfg.DBDriver != "postgres" {
			add("DB_DRIVER", "production requires postgres")
		}
		if cfg.DBPassword == "" {
			add("db_password", "secret is required")
		}
		if cfg.MediaBackend == "memory" {
			add("MEDIA_BACKEND", "the memory backend is not allowed in production")
		}
		if !cfg.AdminEnabled() {
			add("admin_password_hash", "secret is required")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
