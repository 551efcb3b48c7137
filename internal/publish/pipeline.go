// Package publish assembles the stored CSS sections of a theme into one
// stylesheet and writes it to blob storage.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/douceur/parser"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/sections"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

// DefaultMasterFile is the file name of the published stylesheet.
const DefaultMasterFile = "style.css"

// ValidationResult lists the required sections a theme still lacks.
type ValidationResult struct {
	MissingSections []string `json:"missingSections"`
}

// Ready reports whether the theme can be published.
func (r ValidationResult) Ready() bool { return len(r.MissingSections) == 0 }

// Result describes a published stylesheet.
type Result struct {
	ThemeID   uuid.UUID `json:"themeId"`
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Version   int64     `json:"version"`
	Checksum  string    `json:"checksum"`
	Bytes     int       `json:"bytes"`
	Sections  []string  `json:"sections"`
	RuleCount int       `json:"ruleCount"`
}

// RebuildInput carries the trees a theme's sections are generated from.
type RebuildInput struct {
	ThemeID  uuid.UUID
	Sections cssgen.SectionsInput
}

// Pipeline validates and publishes theme stylesheets.
type Pipeline interface {
	Validate(ctx context.Context, themeID uuid.UUID) (ValidationResult, error)
	Publish(ctx context.Context, themeID uuid.UUID) (*Result, error)
	Rebuild(ctx context.Context, input RebuildInput) (*Result, error)
}

// Option configures the pipeline.
type Option func(*pipeline)

func WithLogger(logger interfaces.Logger) Option {
	return func(p *pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNow overrides the clock used for the version stamp.
func WithNow(now func() time.Time) Option {
	return func(p *pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPublicBaseURL sets the prefix of returned URLs.
func WithPublicBaseURL(base string) Option {
	return func(p *pipeline) {
		p.publicBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithMasterFile overrides the published file name.
func WithMasterFile(name string) Option {
	return func(p *pipeline) {
		if name = strings.TrimSpace(name); name != "" {
			p.masterFile = name
		}
	}
}

type pipeline struct {
	sections   sections.Store
	blobs      interfaces.BlobStorage
	logger     interfaces.Logger
	now        func() time.Time
	publicBase string
	masterFile string
}

// New returns a pipeline reading from store and writing to blobs.
func New(store sections.Store, blobs interfaces.BlobStorage, opts ...Option) Pipeline {
	if store == nil {
		panic(ErrSectionStoreRequired)
	}
	if blobs == nil {
		panic(ErrStorageRequired)
	}
	p := &pipeline{
		sections:   store,
		blobs:      blobs,
		logger:     logging.NoOp(),
		now:        time.Now,
		masterFile: DefaultMasterFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// MasterKey returns the blob key of a theme's published stylesheet.
func MasterKey(themeID uuid.UUID, file string) string {
	return "themes/" + themeID.String() + "/" + file
}

func (p *pipeline) Validate(ctx context.Context, themeID uuid.UUID) (ValidationResult, error) {
	if themeID == uuid.Nil {
		return ValidationResult{}, ErrThemeRequired
	}
	missing, err := p.sections.ValidateRequired(ctx, themeID)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{MissingSections: missing}, nil
}

// Publish concatenates variables, header, footer and every template section
// and writes the result. Nothing is written when a required section is
// missing.
func (p *pipeline) Publish(ctx context.Context, themeID uuid.UUID) (*Result, error) {
	logger := logging.WithTheme(p.logger, themeID, "")

	validation, err := p.Validate(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if !validation.Ready() {
		logger.Warn("stylesheet.publish_refused", "missing", validation.MissingSections)
		return nil, newMissingSectionsError(validation.MissingSections)
	}

	templates, err := p.sections.ListTemplates(ctx, themeID)
	if err != nil {
		return nil, err
	}
	names := append(append([]string{}, sections.RequiredSections...), templates...)
	chunks := make([]string, 0, len(names))
	for _, name := range names {
		css, err := p.sections.Get(ctx, themeID, name)
		if err != nil {
			if goerrors.IsWrapped(err) {
				return nil, err
			}
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "publish: read section "+name).
				WithTextCode(textCodeSectionRead)
		}
		chunks = append(chunks, css)
	}
	stylesheet := cssgen.Join(chunks...)

	key := MasterKey(themeID, p.masterFile)
	if err := p.blobs.Put(ctx, key, []byte(stylesheet)); err != nil {
		logger.Error("stylesheet.write_failed", "key", key, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "publish: write stylesheet").
			WithTextCode(textCodeStorageWrite).
			WithMetadata(map[string]any{"key": key})
	}

	version := p.now().UnixMilli()
	sum := sha256.Sum256([]byte(stylesheet))
	result := &Result{
		ThemeID:   themeID,
		URL:       p.publicBase + "/" + key + "?v=" + strconv.FormatInt(version, 10),
		Path:      key,
		Version:   version,
		Checksum:  hex.EncodeToString(sum[:]),
		Bytes:     len(stylesheet),
		Sections:  names,
		RuleCount: p.countRules(logger, stylesheet),
	}
	logger.Info("stylesheet.published", "bytes", result.Bytes, "sections", len(names), "rules", result.RuleCount)
	return result, nil
}

func (p *pipeline) countRules(logger interfaces.Logger, stylesheet string) int {
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		logger.Warn("stylesheet.parse_failed", "error", err)
		return 0
	}
	count := 0
	for _, rule := range sheet.Rules {
		if rule.EmbedsRules() {
			count += len(rule.Rules)
			continue
		}
		count++
	}
	return count
}

// Rebuild regenerates every section from trees, removes template sections
// no longer produced, and publishes.
func (p *pipeline) Rebuild(ctx context.Context, input RebuildInput) (*Result, error) {
	if input.ThemeID == uuid.Nil {
		return nil, ErrThemeRequired
	}
	generated := cssgen.GenerateSections(input.Sections)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, section := range generated {
		group.Go(func() error {
			return p.sections.Save(groupCtx, input.ThemeID, section.Name, section.CSS)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	keep := make(map[string]struct{}, len(generated))
	for _, section := range generated {
		keep[section.Name] = struct{}{}
	}
	existing, err := p.sections.ListTemplates(ctx, input.ThemeID)
	if err != nil {
		return nil, err
	}
	for _, name := range existing {
		if _, ok := keep[name]; !ok {
			p.sections.Delete(ctx, input.ThemeID, name)
		}
	}

	logging.WithTheme(p.logger, input.ThemeID, "").Info("sections.rebuilt", "sections", len(generated))
	return p.Publish(ctx, input.ThemeID)
}
