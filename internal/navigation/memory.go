package navigation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryNavigationRepository keeps navigations in memory.
type MemoryNavigationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Navigation
}

func NewMemoryNavigationRepository() *MemoryNavigationRepository {
	return &MemoryNavigationRepository{records: map[uuid.UUID]*Navigation{}}
}

func (r *MemoryNavigationRepository) Create(_ context.Context, nav *Navigation) (*Navigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[nav.ID] = cloneNavigation(nav)
	return cloneNavigation(nav), nil
}

func (r *MemoryNavigationRepository) Update(_ context.Context, nav *Navigation) (*Navigation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[nav.ID]; !ok {
		return nil, &NotFoundError{Resource: "navigation", Key: nav.ID.String()}
	}
	r.records[nav.ID] = cloneNavigation(nav)
	return cloneNavigation(nav), nil
}

func (r *MemoryNavigationRepository) GetByID(_ context.Context, id uuid.UUID) (*Navigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "navigation", Key: id.String()}
	}
	return cloneNavigation(record), nil
}

func (r *MemoryNavigationRepository) ListBySite(_ context.Context, siteID uuid.UUID, publishedOnly bool) ([]*Navigation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Navigation{}
	for _, record := range r.records {
		if record.SiteID != siteID || (publishedOnly && !record.Published) {
			continue
		}
		out = append(out, cloneNavigation(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
