package settings

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps settings in a map keyed by site.
type MemoryRepository struct {
	mu          sync.RWMutex
	sites       map[uuid.UUID]Settings
	broadcaster *changeBroadcaster
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sites:       map[uuid.UUID]Settings{},
		broadcaster: newChangeBroadcaster(),
	}
}

func (r *MemoryRepository) Get(_ context.Context, siteID uuid.UUID) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.sites[siteID]
	if !ok {
		return Settings{}, ErrUnavailable
	}
	return stored.clone(), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, settings Settings) (Settings, error) {
	if settings.SiteID == uuid.Nil {
		return Settings{}, ErrSiteRequired
	}
	r.mu.Lock()
	previous, existed := r.sites[settings.SiteID]
	stored := settings.clone()
	r.sites[settings.SiteID] = stored
	r.mu.Unlock()

	if existed && reflect.DeepEqual(previous.Values, stored.Values) {
		return stored.clone(), nil
	}
	changeType := ChangeUpdated
	if !existed {
		changeType = ChangeCreated
	}
	r.broadcaster.Broadcast(ChangeEvent{Type: changeType, SiteID: settings.SiteID})
	return stored.clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, siteID uuid.UUID) error {
	r.mu.Lock()
	if _, ok := r.sites[siteID]; !ok {
		r.mu.Unlock()
		return ErrUnavailable
	}
	delete(r.sites, siteID)
	r.mu.Unlock()

	r.broadcaster.Broadcast(ChangeEvent{Type: ChangeDeleted, SiteID: siteID})
	return nil
}

func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
