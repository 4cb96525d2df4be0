package graph

import (
	"fmt"

	"github.com/sitegraph-io/sitegraph/internal/delivery"
	asst "github.com/sitegraph-io/sitegraph/internal/domain/asset"
	"github.com/sitegraph-io/sitegraph/internal/domain/content"
)

// NodeBuilder constructs the typed node for one raw entry, classifying its
// elements into scalar fields and the three relationship field groups.
// Builders are invoked lazily, once per distinct entry encountered.
type NodeBuilder func(entry delivery.Entry) (content.Node, error)

// Registry is the explicit codename-to-builder mapping owned by the
// materializer. The remote client holds no registration state.
type Registry struct {
	builders map[string]NodeBuilder
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]NodeBuilder)}
}

// Register registers a builder for a content type codename.
// Re-registering a codename replaces the previous builder: the last
// registration wins, consistent with type-list iteration order.
func (r *Registry) Register(typeCodename string, b NodeBuilder) {
	r.builders[typeCodename] = b
}

// RegisterTypes registers the default builder for every discovered type.
func (r *Registry) RegisterTypes(types []content.Type) {
	for _, t := range types {
		r.Register(t.Codename(), defaultBuilder(t))
	}
}

// Builder looks up the builder for a content type codename.
func (r *Registry) Builder(typeCodename string) (NodeBuilder, bool) {
	b, ok := r.builders[typeCodename]
	return b, ok
}

// defaultBuilder classifies a raw entry's elements by kind: scalar values go
// into the item field map, relationship elements additionally produce their
// field group entry with the ids the declared reference will resolve.
func defaultBuilder(t content.Type) NodeBuilder {
	return func(entry delivery.Entry) (content.Node, error) {
		fields := make(map[string]any, len(entry.Elements))
		var linked []content.LinkedItemField
		var taxonomies []content.TaxonomyField
		var assets []content.AssetField

		for _, el := range entry.Elements {
			switch el.Kind {
			case delivery.ElementModularContent:
				refs := make([]content.LinkedItemRef, 0, len(el.LinkedItems))
				ids := make([]string, 0, len(el.LinkedItems))
				for _, li := range el.LinkedItems {
					ref, err := content.NewLinkedItemRef(li.ID, li.Type)
					if err != nil {
						return content.Node{}, fmt.Errorf("entry %s field %s: %w", entry.ID, el.Name, err)
					}
					refs = append(refs, ref)
					ids = append(ids, li.ID)
				}
				f, err := content.NewLinkedItemField(el.Name, refs)
				if err != nil {
					return content.Node{}, fmt.Errorf("entry %s: %w", entry.ID, err)
				}
				linked = append(linked, f)
				fields[el.Name] = ids

			case delivery.ElementTaxonomy:
				f, err := content.NewTaxonomyField(el.Name, el.TaxonomyGroup)
				if err != nil {
					return content.Node{}, fmt.Errorf("entry %s: %w", entry.ID, err)
				}
				taxonomies = append(taxonomies, f)
				fields[el.Name] = el.Value

			case delivery.ElementAsset:
				as := make([]asst.Asset, 0, len(el.Assets))
				ids := make([]string, 0, len(el.Assets))
				for _, av := range el.Assets {
					a, err := asst.New(av.ID, av.URL, av.MediaType, map[string]any{
						"name": av.Name,
						"size": av.Size,
					})
					if err != nil {
						return content.Node{}, fmt.Errorf("entry %s field %s: %w", entry.ID, el.Name, err)
					}
					as = append(as, a)
					ids = append(ids, a.ID())
				}
				f, err := content.NewAssetField(el.Name, as)
				if err != nil {
					return content.Node{}, fmt.Errorf("entry %s: %w", entry.ID, err)
				}
				assets = append(assets, f)
				fields[el.Name] = ids

			case delivery.ElementURLSlug:
				fields[el.Name] = el.Value
				if s, ok := el.Value.(string); ok && s != "" {
					fields["slug"] = s
				}

			default:
				fields[el.Name] = el.Value
			}
		}

		item, err := content.NewItem(entry.ID, t.Codename(), entry.Codename, entry.Component, fields)
		if err != nil {
			return content.Node{}, fmt.Errorf("build item: %w", err)
		}
		return content.NewNode(item, linked, taxonomies, assets), nil
	}
}
