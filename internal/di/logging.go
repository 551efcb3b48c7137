package di

import (
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/logging/console"
	"github.com/ridasaidd/byteforge-sub002/internal/logging/gologger"
	"github.com/ridasaidd/byteforge-sub002/internal/logging/zerologger"
	"github.com/ridasaidd/byteforge-sub002/internal/runtimeconfig"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// newLoggerProvider returns nil when the logger feature is off, which module
// loggers turn into no-ops.
func newLoggerProvider(cfg runtimeconfig.Config) (interfaces.LoggerProvider, error) {
	if !cfg.Features.Logger {
		return nil, nil
	}
	logCfg := cfg.Logging
	switch cfg.LoggingProvider() {
	case "gologger":
		// go-logger applies focus itself.
		return gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
	case "zerolog":
		return focusProvider{
			inner:  zerologger.NewProvider(zerologger.Config{Level: logCfg.Level, Format: logCfg.Format}),
			config: logCfg,
		}, nil
	default:
		level := console.ParseLevel(logCfg.Level)
		return focusProvider{
			inner:  console.NewProvider(console.Options{MinLevel: &level}),
			config: logCfg,
		}, nil
	}
}

// focusProvider silences modules outside the configured focus list.
type focusProvider struct {
	inner  interfaces.LoggerProvider
	config runtimeconfig.LoggingConfig
}

func (p focusProvider) GetLogger(name string) interfaces.Logger {
	if !p.config.Focused(name) {
		return logging.NoOp()
	}
	return p.inner.GetLogger(name)
}
