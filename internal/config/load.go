package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvConfigPath names the environment variable holding the config file path
	EnvConfigPath = "CONFIG_PATH"

	// DefaultConfigFile is used when neither a flag nor CONFIG_PATH is given
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides (RECOVERYD_LOGGING_LEVEL -> logging.level)
	EnvPrefix = "RECOVERYD_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// sections are the nested config blocks that environment overrides may target
var sections = []string{"recovery_settings", "logging", "server", "intel"}

// ResolvePath picks the config file: explicit path, then CONFIG_PATH, then config.yaml
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigFile
}

// Load reads the YAML configuration file, applies RECOVERYD_* environment
// overrides, fills defaults and validates the result. The returned Config is
// meant to be loaded once at startup and passed to every component that needs it.
func Load(path string) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	path = ResolvePath(path)

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fileError(err, "failed to parse YAML file %s", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fileError(err, "failed to load environment variables")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, validationError(err, "configuration has invalid field types")
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fileError(nil, "configuration file not found: %s", path)
		}
		return nil, fileError(err, "failed to open configuration file %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fileError(err, "failed to stat configuration file %s", path)
	}
	if info.IsDir() {
		return nil, fileError(nil, "configuration path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fileError(nil, "configuration file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fileError(err, "failed to read configuration file %s", path)
	}
	return content, nil
}

// envKey maps RECOVERYD_SECTION_FIELD_NAME to section.field_name. Keys that
// don't start with a known section stay top-level (RECOVERYD_APP_NAME -> app_name).
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}
