package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/domain/taxonomy"
	"github.com/sitegraph-io/sitegraph/internal/logger"
	"github.com/sitegraph-io/sitegraph/internal/metrics"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// TaxonomyBuilder materializes taxonomy vocabularies into per-group
// collections. Taxonomy is built before any content so taxonomy-field
// references always point at populated collections.
type TaxonomyBuilder struct {
	fetcher Fetcher
}

// NewTaxonomyBuilder creates a TaxonomyBuilder.
func NewTaxonomyBuilder(f Fetcher) *TaxonomyBuilder {
	return &TaxonomyBuilder{fetcher: f}
}

// BuildAll fetches all taxonomy groups and inserts their term forests.
// Each group collection declares a self-referential "terms" reference: a
// term's children are terms of the same generated type.
func (b *TaxonomyBuilder) BuildAll(ctx context.Context, st store.Store) error {
	groups, err := b.fetcher.Taxonomies(ctx)
	if err != nil {
		return fmt.Errorf("taxonomy groups: %w", err)
	}

	log := logger.FromContext(ctx)
	for _, g := range groups {
		col, err := st.AddCollection(g.CollectionType())
		if err != nil {
			return fmt.Errorf("taxonomy collection %s: %w", g.CollectionType(), err)
		}
		col.AddReference("terms", g.CollectionType())
		metrics.ReferencesTotal.Inc()

		if err := b.insertTerms(ctx, col, g.Terms()); err != nil {
			return fmt.Errorf("taxonomy %s: %w", g.Codename(), err)
		}
		log.Debug("taxonomy group materialized",
			zap.String("group", g.Codename()),
			zap.String("collection", g.CollectionType()),
		)
	}
	return nil
}

// insertTerms walks a term forest depth-first in pre-order: each term node
// is inserted before its own descendants, siblings before their subtrees'
// completion. A term node carries only direct child ids, never embedded
// copies. An empty list is the recursion base case.
func (b *TaxonomyBuilder) insertTerms(ctx context.Context, col store.Collection, terms []taxonomy.Term) error {
	if len(terms) == 0 {
		return nil
	}
	for _, t := range terms {
		node := store.Node{
			ID:       t.ID(),
			TypeName: col.TypeName(),
			Fields: map[string]any{
				"name":  t.Name(),
				"slug":  t.Slug(),
				"terms": t.ChildIDs(),
			},
		}
		rec, err := col.AddNode(ctx, node)
		if err != nil {
			return fmt.Errorf("insert term %s: %w", t.ID(), err)
		}
		if rec.Created {
			metrics.NodesTotal.WithLabelValues("taxonomy_term").Inc()
		}
		if err := b.insertTerms(ctx, col, t.Children()); err != nil {
			return err
		}
	}
	return nil
}
