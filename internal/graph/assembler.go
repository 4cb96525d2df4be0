package graph

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/delivery"
	"github.com/sitegraph-io/sitegraph/internal/domain"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
	"github.com/sitegraph-io/sitegraph/internal/domain/link"
	"github.com/sitegraph-io/sitegraph/internal/logger"
	"github.com/sitegraph-io/sitegraph/internal/metrics"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// Assembler materializes the content entries of one type at a time.
// Within a type's pass all linked items are assembled before the primary
// entries; across types assembly is strictly sequential in API order, so
// later types may rely on earlier types' nodes and on taxonomy.
type Assembler struct {
	fetcher    Fetcher
	registry   *Registry
	refs       *ReferenceResolver
	pathPrefix string
}

// NewAssembler creates an Assembler.
func NewAssembler(f Fetcher, registry *Registry, refs *ReferenceResolver, pathPrefix string) *Assembler {
	return &Assembler{fetcher: f, registry: registry, refs: refs, pathPrefix: pathPrefix}
}

// AssembleType fetches and materializes all entries of one content type.
// No entries is not an error; the pass is skipped with an info log.
func (a *Assembler) AssembleType(ctx context.Context, st store.Store, t content.Type) error {
	log := logger.FromContext(ctx)

	res, err := a.fetcher.Items(ctx, t.Codename())
	if err != nil {
		return fmt.Errorf("items of type %s: %w", t.Codename(), err)
	}
	if len(res.Items) == 0 {
		log.Info("no entries for content type, skipping", zap.String("type", t.Codename()))
		return nil
	}

	// Linked items first, including rich-text components retrievable no
	// other way. By the time a referencing field resolves, its target node
	// already exists or its collection is created on demand.
	for _, entry := range sortedLinked(res.LinkedItems) {
		if _, err := a.assembleEntry(ctx, st, entry); err != nil {
			return fmt.Errorf("linked item %s: %w", entry.ID, err)
		}
	}
	for _, entry := range res.Items {
		if _, err := a.assembleEntry(ctx, st, entry); err != nil {
			return fmt.Errorf("entry %s: %w", entry.ID, err)
		}
	}

	log.Debug("content type assembled",
		zap.String("type", t.Codename()),
		zap.Int("entries", len(res.Items)),
		zap.Int("linked", len(res.LinkedItems)),
	)
	return nil
}

// assembleEntry materializes one raw entry: build the typed node, dedup by
// id against the target collection, resolve references, insert, and derive
// an ItemLink for non-component records.
func (a *Assembler) assembleEntry(ctx context.Context, st store.Store, entry delivery.Entry) (store.Record, error) {
	builder, ok := a.registry.Builder(entry.Type)
	if !ok {
		return store.Record{}, fmt.Errorf("type %q: %w", entry.Type, domain.ErrTypeNotRegistered)
	}
	node, err := builder(entry)
	if err != nil {
		return store.Record{}, fmt.Errorf("build node: %w", err)
	}
	item := node.Item()

	col, err := st.AddCollection(item.TypeName())
	if err != nil {
		return store.Record{}, fmt.Errorf("collection %s: %w", item.TypeName(), err)
	}

	// An entry seen both as a linked item and as a primary entry, or
	// referenced from two fields, is materialized exactly once.
	if existing, found, err := col.FindNode(ctx, item.ID()); err != nil {
		return store.Record{}, fmt.Errorf("find node %s: %w", item.ID(), err)
	} else if found {
		metrics.DedupHitsTotal.WithLabelValues("content").Inc()
		return store.Record{Node: existing, Created: false, IsComponent: existing.Component}, nil
	}

	if err := a.refs.Resolve(ctx, st, col, node); err != nil {
		return store.Record{}, err
	}

	rec, err := col.AddNode(ctx, store.Node{
		ID:        item.ID(),
		TypeName:  item.TypeName(),
		Component: item.IsComponent(),
		Fields:    item.Fields(),
	})
	if err != nil {
		return store.Record{}, fmt.Errorf("insert node %s: %w", item.ID(), err)
	}
	if rec.Created {
		metrics.NodesTotal.WithLabelValues("content").Inc()
	}

	if !rec.IsComponent {
		if err := a.insertItemLink(ctx, st, item); err != nil {
			return store.Record{}, err
		}
	}
	return rec, nil
}

func (a *Assembler) insertItemLink(ctx context.Context, st store.Store, item content.Item) error {
	l, err := link.New(item.ID(), item.TypeName(), link.Path(a.pathPrefix, item.TypeName(), item.Slug()))
	if err != nil {
		return fmt.Errorf("derive item link: %w", err)
	}
	linkCol, err := st.AddCollection(link.CollectionType)
	if err != nil {
		return fmt.Errorf("item link collection: %w", err)
	}
	rec, err := linkCol.AddNode(ctx, store.Node{
		ID:       l.ID(),
		TypeName: link.CollectionType,
		Fields: map[string]any{
			"type_name": l.TypeName(),
			"path":      l.Path(),
		},
	})
	if err != nil {
		return fmt.Errorf("insert item link %s: %w", l.ID(), err)
	}
	if rec.Created {
		metrics.NodesTotal.WithLabelValues("item_link").Inc()
	}
	return nil
}

// sortedLinked returns side-table entries in a stable id order. The map
// carries no meaningful order and the only ordering invariant is
// linked-before-primary.
func sortedLinked(m map[string]delivery.Entry) []delivery.Entry {
	out := make([]delivery.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
