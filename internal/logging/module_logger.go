package logging

import (
	"context"

	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const (
	rootModule       = "byteforge"
	themesModule     = "byteforge.themes"
	compilerModule   = "byteforge.compiler"
	metadataModule   = "byteforge.metadata"
	cssgenModule     = "byteforge.cssgen"
	sectionsModule   = "byteforge.sections"
	publishModule    = "byteforge.publish"
	jobsModule       = "byteforge.jobs"
	navigationModule = "byteforge.navigation"
	settingsModule   = "byteforge.settings"
	pagesModule      = "byteforge.pages"
)

// ModuleLogger returns a logger for module, tagged with a "module" field. A
// nil provider yields the no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

func CompilerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, compilerModule)
}

func MetadataLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, metadataModule)
}

func CSSLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cssgenModule)
}

func SectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sectionsModule)
}

func PublishLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, publishModule)
}

// JobsLogger is used by the scheduled rebuild worker.
func JobsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, jobsModule)
}

func NavigationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationModule)
}

func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
