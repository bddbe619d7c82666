package repository

import (
	"context"

	"news-aggregator/internal/domain/entity"
)

// SourceRepository exposes the configured source descriptors.
// Implementations return the same immutable set for the lifetime of the process.
type SourceRepository interface {
	List(ctx context.Context) ([]entity.SourceDescriptor, error)
}
