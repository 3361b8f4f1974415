package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkscribe/api-service/internal/domain/entity"
)

// LinkRepository defines the interface for link history operations
type LinkRepository interface {
	// Create stores a classified link
	Create(ctx context.Context, link *entity.Link) error

	// GetByID retrieves a link by its ID, returning nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Link, error)

	// List retrieves links, newest first, with pagination
	List(ctx context.Context, limit, offset int) ([]*entity.Link, int64, error)

	// CountByLabel returns how many links were classified under each label
	CountByLabel(ctx context.Context) (map[string]int64, error)
}
