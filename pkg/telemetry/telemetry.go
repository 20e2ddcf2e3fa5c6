package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/ccip-bridge/pkg/assert"
)

type Telemetry struct {
	Logger      zerolog.Logger
	serviceName string
}

// New builds the service logger from CCIP_LOG_* environment variables, with any non-zero field of
// opts taking precedence.
func New(opts Options) (Telemetry, error) {
	config, err := loadConfig(opts.Environment)
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load telemetry config")
	}

	options := newDefaultOptions()
	config.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid telemetry options")
	}

	return Telemetry{
		Logger:      newLogger(options),
		serviceName: options.ServiceName,
	}, nil
}

// GetLogger returns a component-specific logger.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.Logger.With().Str("component", t.serviceName+"."+component).Logger()
}

func newLogger(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer
	switch opts.LogFormat {
	case LogFormatPretty:
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	case LogFormatJSON:
		writer = out
	case LogFormatUndefined:
		assert.That(false, "log format validated before logger construction")
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}
