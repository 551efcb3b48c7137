package themes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ThemeRepository persists themes. SiteID uuid.Nil addresses the global scope.
type ThemeRepository interface {
	Create(ctx context.Context, theme *Theme) (*Theme, error)
	Update(ctx context.Context, theme *Theme) (*Theme, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Theme, error)
	GetByName(ctx context.Context, siteID uuid.UUID, name string) (*Theme, error)
	ListByScope(ctx context.Context, siteID uuid.UUID) ([]*Theme, error)
	// GetActive returns NotFoundError when the scope has no active theme.
	GetActive(ctx context.Context, siteID uuid.UUID) (*Theme, error)
	// Activate deactivates every sibling in the theme's scope and activates
	// the theme as one atomic step.
	Activate(ctx context.Context, id uuid.UUID, at time.Time) (*Theme, error)
}

// NotFoundError is returned when a theme cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
