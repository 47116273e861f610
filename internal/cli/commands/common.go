package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/logger"
)

// Options carries the persistent flags shared by every command
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	Out io.Writer
}

func (o *Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// ExitError asks the process to terminate with Code. Message may be empty
// when the command already reported the outcome.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

// loadRuntime loads the configuration and initializes logging. Flags take
// precedence over the logging block of the configuration file.
func loadRuntime(opts *Options) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	format := cfg.Logging.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}

	logger.Init(level, format)
	return cfg, logger.GetLogger(), nil
}
