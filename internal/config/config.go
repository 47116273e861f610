package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the application
type Config struct {
	AppName   string `koanf:"app_name" validate:"required,min=1"`
	DebugMode bool   `koanf:"debug_mode"`

	// Server Configuration
	Server ServerConfig `koanf:"server"`

	// Logging Configuration
	Logging LoggingConfig `koanf:"logging"`

	// Restoration settings consumed by the restore engine and orchestrator
	Recovery RecoverySettings `koanf:"recovery_settings"`

	// Static answers for the intelligence source
	Intel IntelConfig `koanf:"intel"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `koanf:"host" validate:"required"`
	Port           int      `koanf:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error critical"`
	Format string `koanf:"format" validate:"oneof=json console"` // json, console
}

// RecoverySettings describes where backups are restored to and which files qualify
type RecoverySettings struct {
	TargetDir     string            `koanf:"target_dir" validate:"required"`
	BackupFormats map[string]string `koanf:"backup_formats" validate:"required,min=1,dive,required,glob"`
	EncryptKey    string            `koanf:"encrypt_key"`
}

// IntelConfig configures the static intelligence source.
// Empty fields fall back to the source's built-in answers.
type IntelConfig struct {
	StableBackupPath string          `koanf:"stable_backup_path"`
	CodebaseVersion  string          `koanf:"codebase_version"`
	BackupVersion    string          `koanf:"backup_version"`
	Migrations       []MigrationPath `koanf:"migrations" validate:"dive"`
}

// MigrationPath lists the scripts that bridge one version to another
type MigrationPath struct {
	From    string   `koanf:"from" validate:"required"`
	To      string   `koanf:"to" validate:"required"`
	Scripts []string `koanf:"scripts" validate:"required,min=1,dive,required"`
}

var (
	// ErrConfigFile indicates the configuration file could not be read or parsed
	ErrConfigFile = errors.New("configuration file error")

	// ErrConfigValidation indicates the configuration does not satisfy the schema
	ErrConfigValidation = errors.New("configuration validation error")
)

// Error is returned by Load and Validate. Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fileError(err error, format string, args ...any) *Error {
	return &Error{Kind: ErrConfigFile, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationError(err error, format string, args ...any) *Error {
	return &Error{Kind: ErrConfigValidation, Message: fmt.Sprintf(format, args...), Err: err}
}

// Validate checks the configuration against its schema. Field paths in the
// returned error use the YAML key names (e.g. server.port).
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationError(err, "configuration is invalid")
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: failed on '%s' validation", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return validationError(nil, "configuration is invalid: %s", strings.Join(problems, "; "))
}

// fieldPath strips the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report fields by their koanf key so errors match the YAML the operator wrote
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, err := filepath.Match(fl.Field().String(), "")
		return err == nil
	})

	return validate
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}
