package themes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryThemeRepository keeps themes in process. Activation runs inside a
// single critical section so readers never observe two active themes.
type MemoryThemeRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Theme
}

func NewMemoryThemeRepository() *MemoryThemeRepository {
	return &MemoryThemeRepository{byID: make(map[uuid.UUID]*Theme)}
}

func (r *MemoryThemeRepository) Create(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, nil
	}
	cloned := cloneTheme(theme)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[cloned.ID] = cloned
	return cloneTheme(cloned), nil
}

func (r *MemoryThemeRepository) Update(_ context.Context, theme *Theme) (*Theme, error) {
	if theme == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[theme.ID]; !ok {
		return nil, &NotFoundError{Resource: "theme", Key: theme.ID.String()}
	}
	cloned := cloneTheme(theme)
	r.byID[cloned.ID] = cloned
	return cloneTheme(cloned), nil
}

func (r *MemoryThemeRepository) GetByID(_ context.Context, id uuid.UUID) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "theme", Key: id.String()}
	}
	return cloneTheme(record), nil
}

func (r *MemoryThemeRepository) GetByName(_ context.Context, siteID uuid.UUID, name string) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.byID {
		if record.SiteID == siteID && record.Name == name {
			return cloneTheme(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "theme", Key: name}
}

func (r *MemoryThemeRepository) ListByScope(_ context.Context, siteID uuid.UUID) ([]*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Theme, 0)
	for _, record := range r.byID {
		if record.SiteID == siteID {
			out = append(out, cloneTheme(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryThemeRepository) GetActive(_ context.Context, siteID uuid.UUID) (*Theme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.byID {
		if record.SiteID == siteID && record.IsActive {
			return cloneTheme(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "active theme", Key: siteID.String()}
}

func (r *MemoryThemeRepository) Activate(_ context.Context, id uuid.UUID, at time.Time) (*Theme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "theme", Key: id.String()}
	}
	for _, record := range r.byID {
		if record.SiteID == target.SiteID && record.IsActive && record.ID != id {
			record.IsActive = false
			record.UpdatedAt = at
		}
	}
	target.IsActive = true
	target.UpdatedAt = at
	return cloneTheme(target), nil
}
