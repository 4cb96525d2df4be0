package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/config"
	"github.com/sitegraph-io/sitegraph/internal/domain"
	asst "github.com/sitegraph-io/sitegraph/internal/domain/asset"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
	"github.com/sitegraph-io/sitegraph/internal/domain/taxonomy"
	"github.com/sitegraph-io/sitegraph/internal/logger"
	"github.com/sitegraph-io/sitegraph/internal/metrics"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// ReferenceResolver rewrites a node's classified relationship fields into
// collection-level reference declarations before the node is inserted. The
// three passes are independent and order-insensitive; they mutate only the
// owning collection's declarations and the shared asset collection, never
// the node itself.
type ReferenceResolver struct {
	policy string
}

// NewReferenceResolver creates a resolver with the given multi-type policy
// (config.PolicyFirstTypeWins or config.PolicyStrict).
func NewReferenceResolver(policy string) *ReferenceResolver {
	if policy == "" {
		policy = config.PolicyFirstTypeWins
	}
	return &ReferenceResolver{policy: policy}
}

// Resolve runs the three passes for one node against its owning collection.
func (r *ReferenceResolver) Resolve(ctx context.Context, st store.Store, owner store.Collection, node content.Node) error {
	if err := r.resolveLinkedItems(ctx, owner, node); err != nil {
		return err
	}
	r.resolveTaxonomies(owner, node)
	if err := r.resolveAssets(ctx, st, owner, node); err != nil {
		return err
	}
	return nil
}

// resolveLinkedItems declares a typed reference per non-empty linked-item
// field. Empty fields declare nothing: the stored value stays a plain
// array, never a dangling reference. Fields whose items span multiple
// types resolve per the configured policy.
func (r *ReferenceResolver) resolveLinkedItems(ctx context.Context, owner store.Collection, node content.Node) error {
	for _, f := range node.LinkedItemFields() {
		if f.IsEmpty() {
			continue
		}
		types := f.TypeNames()
		if len(types) > 1 {
			if r.policy == config.PolicyStrict {
				return fmt.Errorf("node %s: %w", node.Item().ID(), domain.NewAmbiguousReference(f.Name(), types))
			}
			logger.FromContext(ctx).Warn("linked-item field spans multiple types, resolving with the first",
				zap.String("node", node.Item().ID()),
				zap.String("field", f.Name()),
				zap.Strings("types", types),
			)
		}
		owner.AddReference(f.Name(), types[0])
		metrics.ReferencesTotal.Inc()
	}
	return nil
}

// resolveTaxonomies declares a reference per taxonomy field, targeting the
// generated collection type of the field's group.
func (r *ReferenceResolver) resolveTaxonomies(owner store.Collection, node content.Node) {
	for _, f := range node.TaxonomyFields() {
		owner.AddReference(f.Name(), taxonomy.CollectionType(f.Group()))
		metrics.ReferencesTotal.Inc()
	}
}

// resolveAssets inserts each field's assets into the shared asset
// collection, deduplicated globally by id, then declares the field
// reference. Unlike linked-item fields the reference is declared even for
// an empty field: any asset field on the type addresses the asset
// collection.
func (r *ReferenceResolver) resolveAssets(ctx context.Context, st store.Store, owner store.Collection, node content.Node) error {
	for _, f := range node.AssetFields() {
		assetCol, err := st.AddCollection(asst.CollectionType)
		if err != nil {
			return fmt.Errorf("asset collection: %w", err)
		}
		for _, a := range f.Assets() {
			_, found, err := assetCol.FindNode(ctx, a.ID())
			if err != nil {
				return fmt.Errorf("find asset %s: %w", a.ID(), err)
			}
			if found {
				metrics.DedupHitsTotal.WithLabelValues("asset").Inc()
				continue
			}
			fields := map[string]any{
				"url":        a.URL(),
				"media_type": a.MediaType(),
			}
			for k, v := range a.Metadata() {
				fields[k] = v
			}
			if _, err := assetCol.AddNode(ctx, store.Node{
				ID:       a.ID(),
				TypeName: asst.CollectionType,
				Fields:   fields,
			}); err != nil {
				return fmt.Errorf("insert asset %s: %w", a.ID(), err)
			}
			metrics.NodesTotal.WithLabelValues("asset").Inc()
		}
		owner.AddReference(f.Name(), asst.CollectionType)
		metrics.ReferencesTotal.Inc()
	}
	return nil
}
