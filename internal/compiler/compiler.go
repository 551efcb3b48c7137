// Package compiler turns an editor page plus its header and footer fragments
// into one self-contained render document: fragments merged in order, theme
// references resolved, navigation data embedded and site metadata attached.
package compiler

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/metadata"
	"github.com/ridasaidd/byteforge-sub002/internal/themes"
	"github.com/ridasaidd/byteforge-sub002/internal/tokens"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const (
	navigationRefProp  = "navigationId"
	navigationDataProp = "navigationData"
)

// Fragment is a stored component tree: a page body, header, footer or
// template.
type Fragment struct {
	Content []any          `json:"content"`
	Zones   map[string]any `json:"zones,omitempty"`
}

// Slot resolves a header or footer. The page override wins over the layout
// default; both may be absent.
type Slot struct {
	Override *Fragment
	Layout   *Fragment
}

func (s Slot) effective() *Fragment {
	if s.Override != nil {
		return s.Override
	}
	return s.Layout
}

type Input struct {
	SiteID uuid.UUID
	Root   map[string]any
	Body   Fragment
	Header Slot
	Footer Slot
}

// Document is the compiled render document.
type Document struct {
	Content  []any              `json:"content"`
	Root     map[string]any     `json:"root"`
	Zones    map[string]any     `json:"zones,omitempty"`
	Metadata *metadata.Metadata `json:"metadata"`

	Diagnostics Diagnostics `json:"-"`
}

// Diagnostics counts non-fatal gaps met while compiling.
type Diagnostics struct {
	// Anomalies counts malformed nodes kept verbatim.
	Anomalies int
	// MissingNavigations counts navigation references embedded as null.
	MissingNavigations int
	// ZoneCollisions counts document zones whose key was already taken by
	// an earlier fragment; the later fragment wins.
	ZoneCollisions int
	// UnresolvedTheme is set when no theme tokens were available.
	UnresolvedTheme     bool
	MetadataUnavailable bool
}

// ThemeSource returns the active theme of a site.
type ThemeSource interface {
	ActiveTheme(ctx context.Context, siteID uuid.UUID) (*themes.Theme, error)
}

// MetadataSource gathers site metadata.
type MetadataSource interface {
	Gather(ctx context.Context, siteID uuid.UUID) (*metadata.Metadata, error)
}

type Option func(*Compiler)

func WithThemes(source ThemeSource) Option {
	return func(c *Compiler) { c.themes = source }
}

func WithNavigation(provider interfaces.NavigationProvider) Option {
	return func(c *Compiler) { c.navigation = provider }
}

func WithMetadata(source MetadataSource) Option {
	return func(c *Compiler) { c.metadata = source }
}

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Compiler struct {
	themes     ThemeSource
	navigation interfaces.NavigationProvider
	metadata   MetadataSource
	logger     interfaces.Logger
}

func New(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile never fails on missing configuration: an absent theme leaves
// references untouched, missing navigations embed null and malformed nodes
// are copied as-is. Errors are reserved for context cancellation.
func (c *Compiler) Compile(ctx context.Context, input Input) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.WithSite(c.logger, input.SiteID).WithContext(ctx)
	run := &compilation{ctx: ctx, compiler: c, logger: logger}
	run.tree = c.themeTokens(ctx, input.SiteID, run)

	parts := []*Fragment{input.Header.effective(), &input.Body, input.Footer.effective()}
	doc := &Document{Content: []any{}}
	for _, part := range parts {
		if part == nil {
			continue
		}
		doc.Content = append(doc.Content, run.compileList(part.Content)...)
		for _, key := range sortedKeys(part.Zones) {
			if doc.Zones == nil {
				doc.Zones = map[string]any{}
			}
			if _, taken := doc.Zones[key]; taken {
				run.diag.ZoneCollisions++
				logger.Warn("compiler.zone_collision", "zone", key)
			}
			list, ok := part.Zones[key].([]any)
			if !ok {
				run.diag.Anomalies++
				doc.Zones[key] = part.Zones[key]
				continue
			}
			doc.Zones[key] = run.compileList(list)
		}
	}
	doc.Root = run.resolveMap(input.Root)
	if doc.Root == nil {
		doc.Root = map[string]any{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc.Metadata = c.gatherMetadata(ctx, input.SiteID, run)
	doc.Diagnostics = run.diag
	if run.diag.Anomalies > 0 {
		logger.Warn("compiler.malformed_nodes", "count", run.diag.Anomalies)
	}
	return doc, nil
}

func (c *Compiler) themeTokens(ctx context.Context, siteID uuid.UUID, run *compilation) map[string]any {
	if c.themes == nil {
		run.diag.UnresolvedTheme = true
		return nil
	}
	theme, err := c.themes.ActiveTheme(ctx, siteID)
	if err != nil || theme == nil {
		run.diag.UnresolvedTheme = true
		if err != nil && !errors.Is(err, themes.ErrNoActiveTheme) {
			run.logger.Warn("compiler.theme_unavailable", "error", err)
		}
		return nil
	}
	return theme.Tokens
}

func (c *Compiler) gatherMetadata(ctx context.Context, siteID uuid.UUID, run *compilation) *metadata.Metadata {
	empty := &metadata.Metadata{Navigations: []interfaces.PublishedNavigation{}}
	if c.metadata == nil {
		run.diag.MetadataUnavailable = true
		return empty
	}
	meta, err := c.metadata.Gather(ctx, siteID)
	if err != nil || meta == nil {
		run.diag.MetadataUnavailable = true
		run.logger.Warn("compiler.metadata_unavailable", "error", err)
		return empty
	}
	return meta
}

type compilation struct {
	ctx      context.Context
	compiler *Compiler
	logger   interfaces.Logger
	tree     map[string]any
	diag     Diagnostics
}

func (r *compilation) compileList(nodes []any) []any {
	out := make([]any, 0, len(nodes))
	for _, raw := range nodes {
		out = append(out, r.compileNode(raw))
	}
	return out
}

func (r *compilation) compileNode(raw any) any {
	obj, err := components.CheckNode(raw)
	if err != nil {
		r.diag.Anomalies++
		r.logger.Debug("compiler.node_skipped", "error", err)
		return raw
	}

	out := make(map[string]any, len(obj))
	for key, value := range obj {
		switch key {
		case "props":
			props, _ := value.(map[string]any)
			out[key] = r.resolveMap(props)
		case "content":
			if list, ok := value.([]any); ok {
				out[key] = r.compileList(list)
			} else {
				out[key] = value
			}
		case "zones":
			out[key] = r.compileZones(value)
		default:
			out[key] = cloneValue(value)
		}
	}

	typ, _ := obj["type"].(string)
	r.applyHook(components.ParseKind(typ), out)
	return out
}

func (r *compilation) compileZones(value any) any {
	zones, ok := value.(map[string]any)
	if !ok {
		return value
	}
	out := make(map[string]any, len(zones))
	for name, items := range zones {
		if list, ok := items.([]any); ok {
			out[name] = r.compileList(list)
			continue
		}
		out[name] = items
	}
	return out
}

// applyHook runs the single kind-specific enrichment: navigation nodes get
// their referenced menu embedded.
func (r *compilation) applyHook(kind components.Kind, node map[string]any) {
	switch kind {
	case components.KindNavigation:
		r.embedNavigation(node)
	case components.KindContainer, components.KindSection, components.KindColumns, components.KindGrid,
		components.KindHeading, components.KindText, components.KindLink, components.KindRichText,
		components.KindButton, components.KindImage, components.KindSpacer, components.KindDivider,
		components.KindUnknown:
	}
}

func (r *compilation) embedNavigation(node map[string]any) {
	props, _ := node["props"].(map[string]any)
	if props == nil {
		return
	}
	ref, present := props[navigationRefProp]
	if !present {
		return
	}
	props[navigationDataProp] = nil

	provider := r.compiler.navigation
	id, err := parseRef(ref)
	if err != nil || provider == nil {
		r.diag.MissingNavigations++
		return
	}
	nav, err := provider.FindPublished(r.ctx, id)
	if err != nil {
		r.logger.Warn("compiler.navigation_lookup_failed", "navigation_id", id, "error", err)
	}
	if err != nil || nav == nil {
		r.diag.MissingNavigations++
		return
	}
	props[navigationDataProp] = map[string]any{
		"id":        nav.ID.String(),
		"name":      nav.Name,
		"structure": cloneValue(nav.Structure),
	}
}

func parseRef(ref any) (uuid.UUID, error) {
	s, ok := ref.(string)
	if !ok {
		return uuid.Nil, errors.New("compiler: navigation reference is not a string")
	}
	return uuid.Parse(strings.TrimSpace(s))
}

// resolveMap resolves token references in every value of props.
func (r *compilation) resolveMap(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = r.resolveValue(value)
	}
	return out
}

func (r *compilation) resolveValue(value any) any {
	if r.tree != nil && tokens.IsReferenceValue(value) {
		return cloneValue(tokens.ResolveProp(value, r.tree))
	}
	switch typed := value.(type) {
	case []any:
		if components.IsNodeArray(typed) {
			return r.compileList(typed)
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = r.resolveValue(item)
		}
		return out
	case map[string]any:
		return r.resolveMap(typed)
	default:
		return value
	}
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	default:
		return value
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
