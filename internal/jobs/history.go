package jobs

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one site rebuild.
type Outcome string

const (
	OutcomeRebuilt Outcome = "rebuilt"
	OutcomeFailed  Outcome = "failed"
	// OutcomeSkipped marks a site that had no active theme.
	OutcomeSkipped Outcome = "skipped"
)

const defaultHistoryDepth = 20

// RebuildRecord describes one rebuild attempt for a site.
type RebuildRecord struct {
	SiteID   uuid.UUID
	ThemeID  uuid.UUID
	Outcome  Outcome
	At       time.Time
	URL      string
	Checksum string
	Bytes    int
	Error    string
}

// History stores rebuild records per site.
type History interface {
	Append(ctx context.Context, record RebuildRecord) error
	// Recent returns up to limit records for a site, newest first. A
	// non-positive limit returns everything kept.
	Recent(ctx context.Context, siteID uuid.UUID, limit int) ([]RebuildRecord, error)
}

// MemoryHistory keeps the last depth records of every site.
type MemoryHistory struct {
	mu    sync.Mutex
	depth int
	sites map[uuid.UUID][]RebuildRecord
}

func NewMemoryHistory(depth int) *MemoryHistory {
	if depth <= 0 {
		depth = defaultHistoryDepth
	}
	return &MemoryHistory{depth: depth, sites: map[uuid.UUID][]RebuildRecord{}}
}

func (h *MemoryHistory) Append(_ context.Context, record RebuildRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := append(h.sites[record.SiteID], record)
	if overflow := len(records) - h.depth; overflow > 0 {
		records = slices.Delete(records, 0, overflow)
	}
	h.sites[record.SiteID] = records
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, siteID uuid.UUID, limit int) ([]RebuildRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	records := h.sites[siteID]
	out := make([]RebuildRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, records[i])
	}
	return out, nil
}

type discardHistory struct{}

func (discardHistory) Append(context.Context, RebuildRecord) error { return nil }

func (discardHistory) Recent(context.Context, uuid.UUID, int) ([]RebuildRecord, error) {
	return nil, nil
}
