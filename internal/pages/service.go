package pages

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/compiler"
	"github.com/ridasaidd/byteforge-sub002/internal/components"
	"github.com/ridasaidd/byteforge-sub002/internal/cssgen"
	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/internal/validation"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const textCodeDocumentInvalid = "DOCUMENT_INVALID"

var (
	ErrRepositoryRequired = errors.New("pages: repository required")
	ErrSiteRequired       = errors.New("pages: site id required")
	ErrNameRequired       = errors.New("pages: name required")
	ErrInvalidKind        = errors.New("pages: invalid fragment kind")
	ErrFragmentMismatch   = errors.New("pages: fragment has the wrong kind or site")
	ErrSlugRequired       = errors.New("pages: slug required")
)

// FragmentInput describes a fragment write. A nil ID creates a new fragment.
type FragmentInput struct {
	ID       uuid.UUID
	SiteID   uuid.UUID
	Kind     FragmentKind
	Name     string
	Document map[string]any
}

// PageInput describes a page write. The body document is stored as a page
// fragment.
type PageInput struct {
	ID       uuid.UUID
	SiteID   uuid.UUID
	Title    string
	Slug     string
	LayoutID *uuid.UUID
	HeaderID *uuid.UUID
	FooterID *uuid.UUID
	Document map[string]any
}

// Service stores editor documents and builds pipeline inputs from them.
type Service interface {
	SaveFragment(ctx context.Context, input FragmentInput) (*Fragment, error)
	SaveLayout(ctx context.Context, layout Layout) (*Layout, error)
	SavePage(ctx context.Context, input PageInput) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error)
	CompileInput(ctx context.Context, pageID uuid.UUID) (compiler.Input, error)
	SectionsInput(ctx context.Context, siteID uuid.UUID) (cssgen.SectionsInput, error)
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

type service struct {
	repo   Repository
	logger interfaces.Logger
	newID  func() uuid.UUID
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	s := &service{repo: repo, logger: logging.NoOp(), newID: uuid.New}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SaveFragment validates the document against the editor schema before
// storing it.
func (s *service) SaveFragment(ctx context.Context, input FragmentInput) (*Fragment, error) {
	if input.SiteID == uuid.Nil {
		return nil, ErrSiteRequired
	}
	if _, ok := ParseFragmentKind(string(input.Kind)); !ok {
		return nil, ErrInvalidKind
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := validation.ValidateDocument(input.Document); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "pages: document rejected").
			WithTextCode(textCodeDocumentInvalid).
			WithMetadata(map[string]any{"problems": validation.Problems(err)})
	}

	fragment := &Fragment{
		ID:     input.ID,
		SiteID: input.SiteID,
		Kind:   input.Kind,
		Name:   name,
	}
	if fragment.ID == uuid.Nil {
		fragment.ID = s.newID()
	}
	fragment.Content, _ = input.Document["content"].([]any)
	fragment.Zones, _ = input.Document["zones"].(map[string]any)
	if root, ok := input.Document["root"].(map[string]any); ok {
		if props, ok := root["props"].(map[string]any); ok {
			fragment.Root = props
		} else {
			fragment.Root = root
		}
	}
	if err := s.repo.SaveFragment(ctx, fragment); err != nil {
		return nil, err
	}
	return fragment, nil
}

func (s *service) SaveLayout(ctx context.Context, layout Layout) (*Layout, error) {
	if layout.SiteID == uuid.Nil {
		return nil, ErrSiteRequired
	}
	layout.Name = strings.TrimSpace(layout.Name)
	if layout.Name == "" {
		return nil, ErrNameRequired
	}
	if err := s.checkFragment(ctx, layout.HeaderID, layout.SiteID, FragmentHeader); err != nil {
		return nil, err
	}
	if err := s.checkFragment(ctx, layout.FooterID, layout.SiteID, FragmentFooter); err != nil {
		return nil, err
	}
	if layout.ID == uuid.Nil {
		layout.ID = s.newID()
	}
	if err := s.repo.SaveLayout(ctx, &layout); err != nil {
		return nil, err
	}
	return &layout, nil
}

func (s *service) SavePage(ctx context.Context, input PageInput) (*Page, error) {
	if input.SiteID == uuid.Nil {
		return nil, ErrSiteRequired
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrNameRequired
	}
	slugSource := input.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = title
	}
	pageSlug, err := slug.Normalize(slugSource)
	if err != nil || pageSlug == "" {
		return nil, ErrSlugRequired
	}
	if input.LayoutID != nil {
		if _, err := s.repo.GetLayout(ctx, *input.LayoutID); err != nil {
			return nil, err
		}
	}
	if err := s.checkFragment(ctx, input.HeaderID, input.SiteID, FragmentHeader); err != nil {
		return nil, err
	}
	if err := s.checkFragment(ctx, input.FooterID, input.SiteID, FragmentFooter); err != nil {
		return nil, err
	}

	page := &Page{
		ID:       input.ID,
		SiteID:   input.SiteID,
		Title:    title,
		Slug:     pageSlug,
		LayoutID: input.LayoutID,
		HeaderID: input.HeaderID,
		FooterID: input.FooterID,
	}
	if page.ID == uuid.Nil {
		page.ID = s.newID()
	} else if existing, err := s.repo.GetPage(ctx, page.ID); err == nil {
		page.FragmentID = existing.FragmentID
	}

	body, err := s.SaveFragment(ctx, FragmentInput{
		ID:       page.FragmentID,
		SiteID:   input.SiteID,
		Kind:     FragmentPage,
		Name:     pageSlug,
		Document: input.Document,
	})
	if err != nil {
		return nil, err
	}
	page.FragmentID = body.ID
	if err := s.repo.SavePage(ctx, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetPage(ctx, id)
}

func (s *service) GetPageBySlug(ctx context.Context, siteID uuid.UUID, pageSlug string) (*Page, error) {
	return s.repo.GetPageBySlug(ctx, siteID, pageSlug)
}

// CompileInput gathers the body, header and footer of a page. The page's
// own header and footer override those of its layout.
func (s *service) CompileInput(ctx context.Context, pageID uuid.UUID) (compiler.Input, error) {
	page, err := s.repo.GetPage(ctx, pageID)
	if err != nil {
		return compiler.Input{}, err
	}
	body, err := s.repo.GetFragment(ctx, page.FragmentID)
	if err != nil {
		return compiler.Input{}, err
	}
	input := compiler.Input{
		SiteID: page.SiteID,
		Root:   body.Root,
		Body:   toCompilerFragment(body),
	}
	if input.Header.Override, err = s.optionalFragment(ctx, page.HeaderID); err != nil {
		return compiler.Input{}, err
	}
	if input.Footer.Override, err = s.optionalFragment(ctx, page.FooterID); err != nil {
		return compiler.Input{}, err
	}
	if page.LayoutID != nil {
		layout, err := s.repo.GetLayout(ctx, *page.LayoutID)
		if err != nil {
			return compiler.Input{}, err
		}
		if input.Header.Layout, err = s.optionalFragment(ctx, layout.HeaderID); err != nil {
			return compiler.Input{}, err
		}
		if input.Footer.Layout, err = s.optionalFragment(ctx, layout.FooterID); err != nil {
			return compiler.Input{}, err
		}
	}
	return input, nil
}

// SectionsInput builds the trees of a site's stylesheet: the default
// layout's header and footer plus every template fragment. The theme is
// left for the caller.
func (s *service) SectionsInput(ctx context.Context, siteID uuid.UUID) (cssgen.SectionsInput, error) {
	var out cssgen.SectionsInput
	layouts, err := s.repo.ListLayouts(ctx, siteID)
	if err != nil {
		return out, err
	}
	var layout *Layout
	for _, candidate := range layouts {
		if candidate.Default {
			layout = candidate
			break
		}
	}
	if layout == nil && len(layouts) > 0 {
		layout = layouts[0]
	}
	if layout != nil {
		if out.Header, err = s.fragmentNodes(ctx, layout.HeaderID); err != nil {
			return out, err
		}
		if out.Footer, err = s.fragmentNodes(ctx, layout.FooterID); err != nil {
			return out, err
		}
	}

	templates, err := s.repo.ListFragments(ctx, siteID, FragmentTemplate)
	if err != nil {
		return out, err
	}
	for _, tpl := range templates {
		tree := components.ParseTree(tpl.Document())
		if tree.Anomalies > 0 {
			logging.WithSite(s.logger, siteID).Warn("template.malformed_nodes", "template", tpl.Name, "anomalies", tree.Anomalies)
		}
		out.Templates = append(out.Templates, cssgen.Template{Label: tpl.Name, Nodes: tree.Content})
	}
	return out, nil
}

func (s *service) fragmentNodes(ctx context.Context, id *uuid.UUID) ([]*components.Node, error) {
	if id == nil {
		return nil, nil
	}
	fragment, err := s.repo.GetFragment(ctx, *id)
	if err != nil {
		return nil, err
	}
	return components.ParseTree(fragment.Document()).Content, nil
}

func (s *service) optionalFragment(ctx context.Context, id *uuid.UUID) (*compiler.Fragment, error) {
	if id == nil {
		return nil, nil
	}
	fragment, err := s.repo.GetFragment(ctx, *id)
	if err != nil {
		return nil, err
	}
	out := toCompilerFragment(fragment)
	return &out, nil
}

func (s *service) checkFragment(ctx context.Context, id *uuid.UUID, siteID uuid.UUID, kind FragmentKind) error {
	if id == nil {
		return nil
	}
	fragment, err := s.repo.GetFragment(ctx, *id)
	if err != nil {
		return err
	}
	if fragment.SiteID != siteID || fragment.Kind != kind {
		return ErrFragmentMismatch
	}
	return nil
}

func toCompilerFragment(fragment *Fragment) compiler.Fragment {
	content := fragment.Content
	if content == nil {
		content = []any{}
	}
	return compiler.Fragment{Content: content, Zones: fragment.Zones}
}
