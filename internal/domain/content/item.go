package content

import (
	"fmt"

	"github.com/sitegraph-io/sitegraph/internal/domain/asset"
)

// Item is one content entry stripped to what the graph store persists:
// identity, owning type, addressing data and scalar field values.
// The classified relationship fields live on the enclosing Node.
type Item struct {
	id        string
	typeName  string
	codename  string
	component bool
	fields    map[string]any
}

// NewItem validates and creates an Item.
// Component entries are embedded rich-text fragments; they have no
// addressable codename and never become standalone pages.
func NewItem(id, typeName, codename string, component bool, fields map[string]any) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("item id is required")
	}
	if typeName == "" {
		return Item{}, fmt.Errorf("item %s: type name is required", id)
	}
	if !component && codename == "" {
		return Item{}, fmt.Errorf("item %s: codename is required for non-component entries", id)
	}
	return Item{
		id:        id,
		typeName:  typeName,
		codename:  codename,
		component: component,
		fields:    cloneFields(fields),
	}, nil
}

// ID returns the globally unique entry id.
func (i Item) ID() string { return i.id }

// TypeName returns the codename of the owning content type.
func (i Item) TypeName() string { return i.typeName }

// Codename returns the entry codename (empty for components).
func (i Item) Codename() string { return i.codename }

// IsComponent reports whether the entry exists only embedded in rich text.
func (i Item) IsComponent() bool { return i.component }

// Fields returns the scalar/object field values.
func (i Item) Fields() map[string]any { return i.fields }

// Field looks up a single field value by name.
func (i Item) Field(name string) (any, bool) {
	v, ok := i.fields[name]
	return v, ok
}

// Slug returns the entry's slug field when present, otherwise the codename.
func (i Item) Slug() string {
	if v, ok := i.fields["slug"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return i.codename
}

func cloneFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// LinkedItemRef is one reference to another content entry, carrying the
// referenced entry's type name so the owning field can be declared as a
// typed collection reference.
type LinkedItemRef struct {
	id       string
	typeName string
}

// NewLinkedItemRef validates and creates a LinkedItemRef.
func NewLinkedItemRef(id, typeName string) (LinkedItemRef, error) {
	if id == "" {
		return LinkedItemRef{}, fmt.Errorf("linked item id is required")
	}
	if typeName == "" {
		return LinkedItemRef{}, fmt.Errorf("linked item %s: type name is required", id)
	}
	return LinkedItemRef{id: id, typeName: typeName}, nil
}

// ID returns the referenced entry id.
func (r LinkedItemRef) ID() string { return r.id }

// TypeName returns the referenced entry's content type codename.
func (r LinkedItemRef) TypeName() string { return r.typeName }

// LinkedItemField is a named field holding zero or more references to
// other content entries.
type LinkedItemField struct {
	name  string
	items []LinkedItemRef
}

// NewLinkedItemField validates and creates a LinkedItemField.
func NewLinkedItemField(name string, items []LinkedItemRef) (LinkedItemField, error) {
	if name == "" {
		return LinkedItemField{}, fmt.Errorf("linked item field name is required")
	}
	return LinkedItemField{name: name, items: items}, nil
}

// Name returns the field name.
func (f LinkedItemField) Name() string { return f.name }

// Items returns the referenced entries in field order.
func (f LinkedItemField) Items() []LinkedItemRef { return f.items }

// IsEmpty reports whether the field references no entries.
func (f LinkedItemField) IsEmpty() bool { return len(f.items) == 0 }

// TypeNames returns the distinct referenced type names in first-seen order.
func (f LinkedItemField) TypeNames() []string {
	seen := make(map[string]bool, len(f.items))
	var names []string
	for _, it := range f.items {
		if !seen[it.typeName] {
			seen[it.typeName] = true
			names = append(names, it.typeName)
		}
	}
	return names
}

// TaxonomyField is a named field referencing a taxonomy group by codename.
type TaxonomyField struct {
	name  string
	group string
}

// NewTaxonomyField validates and creates a TaxonomyField.
func NewTaxonomyField(name, groupCodename string) (TaxonomyField, error) {
	if name == "" {
		return TaxonomyField{}, fmt.Errorf("taxonomy field name is required")
	}
	if groupCodename == "" {
		return TaxonomyField{}, fmt.Errorf("taxonomy field %s: group codename is required", name)
	}
	return TaxonomyField{name: name, group: groupCodename}, nil
}

// Name returns the field name.
func (f TaxonomyField) Name() string { return f.name }

// Group returns the referenced taxonomy group codename.
func (f TaxonomyField) Group() string { return f.group }

// AssetField is a named field holding zero or more asset descriptors.
type AssetField struct {
	name   string
	assets []asset.Asset
}

// NewAssetField validates and creates an AssetField.
func NewAssetField(name string, assets []asset.Asset) (AssetField, error) {
	if name == "" {
		return AssetField{}, fmt.Errorf("asset field name is required")
	}
	return AssetField{name: name, assets: assets}, nil
}

// Name returns the field name.
func (f AssetField) Name() string { return f.name }

// Assets returns the asset descriptors in field order.
func (f AssetField) Assets() []asset.Asset { return f.assets }
