package pages

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository persists fragments, layouts and pages.
type Repository interface {
	SaveFragment(ctx context.Context, fragment *Fragment) error
	GetFragment(ctx context.Context, id uuid.UUID) (*Fragment, error)
	ListFragments(ctx context.Context, siteID uuid.UUID, kind FragmentKind) ([]*Fragment, error)
	SaveLayout(ctx context.Context, layout *Layout) error
	GetLayout(ctx context.Context, id uuid.UUID) (*Layout, error)
	ListLayouts(ctx context.Context, siteID uuid.UUID) ([]*Layout, error)
	SavePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*Page, error)
}

// MemoryRepository keeps everything in maps guarded by one lock.
type MemoryRepository struct {
	mu        sync.RWMutex
	fragments map[uuid.UUID]*Fragment
	layouts   map[uuid.UUID]*Layout
	pages     map[uuid.UUID]*Page
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		fragments: map[uuid.UUID]*Fragment{},
		layouts:   map[uuid.UUID]*Layout{},
		pages:     map[uuid.UUID]*Page{},
	}
}

func (r *MemoryRepository) SaveFragment(_ context.Context, fragment *Fragment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *fragment
	r.fragments[fragment.ID] = &copied
	return nil
}

func (r *MemoryRepository) GetFragment(_ context.Context, id uuid.UUID) (*Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fragment, ok := r.fragments[id]
	if !ok {
		return nil, &NotFoundError{Resource: "fragment", Key: id.String()}
	}
	copied := *fragment
	return &copied, nil
}

func (r *MemoryRepository) ListFragments(_ context.Context, siteID uuid.UUID, kind FragmentKind) ([]*Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Fragment{}
	for _, fragment := range r.fragments {
		if fragment.SiteID != siteID || (kind != "" && fragment.Kind != kind) {
			continue
		}
		copied := *fragment
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryRepository) SaveLayout(_ context.Context, layout *Layout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if layout.Default {
		for _, other := range r.layouts {
			if other.SiteID == layout.SiteID && other.ID != layout.ID {
				other.Default = false
			}
		}
	}
	copied := *layout
	r.layouts[layout.ID] = &copied
	return nil
}

func (r *MemoryRepository) GetLayout(_ context.Context, id uuid.UUID) (*Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	layout, ok := r.layouts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: id.String()}
	}
	copied := *layout
	return &copied, nil
}

func (r *MemoryRepository) ListLayouts(_ context.Context, siteID uuid.UUID) ([]*Layout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Layout{}
	for _, layout := range r.layouts {
		if layout.SiteID == siteID {
			copied := *layout
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) SavePage(_ context.Context, page *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *page
	r.pages[page.ID] = &copied
	return nil
}

func (r *MemoryRepository) GetPage(_ context.Context, id uuid.UUID) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	page, ok := r.pages[id]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: id.String()}
	}
	copied := *page
	return &copied, nil
}

func (r *MemoryRepository) GetPageBySlug(_ context.Context, siteID uuid.UUID, slug string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, page := range r.pages {
		if page.SiteID == siteID && page.Slug == slug {
			copied := *page
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "page", Key: slug}
}
