// Package zerologger backs the logging contract with github.com/rs/zerolog.
package zerologger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

type Config struct {
	Level  string
	Format string // json or console
	Writer io.Writer
}

type Provider struct {
	root zerolog.Logger
}

func NewProvider(cfg Config) *Provider {
	out := cfg.Writer
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return &Provider{root: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	logger := p.root
	if name = strings.TrimSpace(name); name != "" {
		logger = logger.With().Str("logger", name).Logger()
	}
	return &adapter{inner: logger}
}

type adapter struct {
	inner zerolog.Logger
	ctx   context.Context
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.emit(l.inner.Trace(), msg, args) }
func (l *adapter) Debug(msg string, args ...any) { l.emit(l.inner.Debug(), msg, args) }
func (l *adapter) Info(msg string, args ...any)  { l.emit(l.inner.Info(), msg, args) }
func (l *adapter) Warn(msg string, args ...any)  { l.emit(l.inner.Warn(), msg, args) }
func (l *adapter) Error(msg string, args ...any) { l.emit(l.inner.Error(), msg, args) }

// Fatal logs at error level. The pipeline never terminates the host process.
func (l *adapter) Fatal(msg string, args ...any) {
	l.emit(l.inner.Error().Bool("fatal", true), msg, args)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	return &adapter{inner: l.inner.With().Fields(fields).Logger(), ctx: l.ctx}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	return &adapter{inner: l.inner, ctx: ctx}
}

func (l *adapter) emit(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}
	if fields := logging.ContextFields(l.ctx); len(fields) > 0 {
		event = event.Fields(fields)
	}
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			event = event.AnErr(key, err)
			continue
		}
		event = event.Interface(key, args[i+1])
	}
	event.Msg(msg)
}
