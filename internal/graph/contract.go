package graph

import (
	"context"

	"github.com/sitegraph-io/sitegraph/internal/delivery"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
	"github.com/sitegraph-io/sitegraph/internal/domain/taxonomy"
)

// Fetcher defines the remote content API contract the materializer drives.
type Fetcher interface {
	Types(ctx context.Context) ([]content.Type, error)
	Taxonomies(ctx context.Context) ([]taxonomy.Group, error)
	// Items returns the entries of one content type plus the side table of
	// everything they transitively reference.
	Items(ctx context.Context, typeCodename string) (delivery.ItemsResult, error)
}
