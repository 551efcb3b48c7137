// Package jobs regenerates and republishes theme stylesheets in the
// background.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/publish"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const defaultTargetTimeout = 2 * time.Minute

var ErrWorkerMisconfigured = errors.New("jobs: pipeline, sources and themes are required")

// Target is one site whose active theme is rebuilt.
type Target struct {
	SiteID uuid.UUID
}

// TargetLister returns the sites to rebuild on each run.
type TargetLister interface {
	ListTargets(ctx context.Context) ([]Target, error)
}

// StaticTargets is a fixed target list.
type StaticTargets []Target

func (t StaticTargets) ListTargets(context.Context) ([]Target, error) {
	return append([]Target(nil), t...), nil
}

// SourceLoader builds the stylesheet trees of a site.
type SourceLoader interface {
	SectionsInput(ctx context.Context, siteID uuid.UUID) (cssgen.SectionsInput, error)
}

// ThemeSource resolves the active theme of a site.
type ThemeSource interface {
	ActiveTheme(ctx context.Context, siteID uuid.UUID) (*themes.Theme, error)
}

// Worker rebuilds the active theme stylesheet of every target.
type Worker struct {
	pipeline publish.Pipeline
	sources  SourceLoader
	themes   ThemeSource
	targets  TargetLister
	history  History
	logger   interfaces.Logger
	now      func() time.Time
	timeout  time.Duration
}

type Option func(*Worker)

func WithHistory(history History) Option {
	return func(w *Worker) {
		if history != nil {
			w.history = history
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTargetTimeout bounds the rebuild of a single target.
func WithTargetTimeout(timeout time.Duration) Option {
	return func(w *Worker) {
		if timeout > 0 {
			w.timeout = timeout
		}
	}
}

func NewWorker(pipeline publish.Pipeline, sources SourceLoader, themeSource ThemeSource, targets TargetLister, opts ...Option) (*Worker, error) {
	if pipeline == nil || sources == nil || themeSource == nil {
		return nil, ErrWorkerMisconfigured
	}
	if targets == nil {
		targets = StaticTargets(nil)
	}
	w := &Worker{
		pipeline: pipeline,
		sources:  sources,
		themes:   themeSource,
		targets:  targets,
		history:  discardHistory{},
		logger:   logging.NoOp(),
		now:      time.Now,
		timeout:  defaultTargetTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Process rebuilds every target. Sites without an active theme are skipped.
// Failures of one target do not stop the others; they are joined into the
// returned error.
func (w *Worker) Process(ctx context.Context) error {
	targets, err := w.targets.ListTargets(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, target := range targets {
		if err := w.processTarget(ctx, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Worker) processTarget(ctx context.Context, target Target) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	logger := logging.WithSite(w.logger, target.SiteID)

	theme, err := w.themes.ActiveTheme(ctx, target.SiteID)
	if errors.Is(err, themes.ErrNoActiveTheme) {
		logger.Info("rebuild.skipped", "reason", "no active theme")
		w.record(ctx, RebuildRecord{SiteID: target.SiteID, Outcome: OutcomeSkipped})
		return nil
	}
	if err != nil {
		return err
	}

	input, err := w.sources.SectionsInput(ctx, target.SiteID)
	if err != nil {
		w.record(ctx, RebuildRecord{SiteID: target.SiteID, ThemeID: theme.ID, Outcome: OutcomeFailed, Error: err.Error()})
		return err
	}
	input.Theme = theme.Tokens

	result, err := w.pipeline.Rebuild(ctx, publish.RebuildInput{ThemeID: theme.ID, Sections: input})
	if err != nil {
		logger.Error("rebuild.failed", "theme_id", theme.ID.String(), "error", err)
		w.record(ctx, RebuildRecord{SiteID: target.SiteID, ThemeID: theme.ID, Outcome: OutcomeFailed, Error: err.Error()})
		return err
	}
	logger.Info("rebuild.completed", "theme_id", theme.ID.String(), "url", result.URL)
	w.record(ctx, RebuildRecord{
		SiteID:   target.SiteID,
		ThemeID:  theme.ID,
		Outcome:  OutcomeRebuilt,
		URL:      result.URL,
		Checksum: result.Checksum,
		Bytes:    result.Bytes,
	})
	return nil
}

// History returns the record store the worker appends to.
func (w *Worker) History() History {
	return w.history
}

func (w *Worker) record(ctx context.Context, record RebuildRecord) {
	record.At = w.now()
	if err := w.history.Append(ctx, record); err != nil {
		w.logger.Warn("rebuild.history_failed", "site_id", record.SiteID.String(), "error", err)
	}
}
