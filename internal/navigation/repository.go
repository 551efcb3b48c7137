package navigation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NavigationRepository persists navigations.
type NavigationRepository interface {
	Create(ctx context.Context, nav *Navigation) (*Navigation, error)
	Update(ctx context.Context, nav *Navigation) (*Navigation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Navigation, error)
	// ListBySite returns navigations ordered by name.
	ListBySite(ctx context.Context, siteID uuid.UUID, publishedOnly bool) ([]*Navigation, error)
}

// NotFoundError is returned when a navigation cannot be located.
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
