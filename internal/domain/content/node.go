package content

// Node is one assembled content entry: the Item persisted to the store
// plus the three classified relationship field groups the reference
// resolver rewrites into collection references.
type Node struct {
	item        Item
	linkedItems []LinkedItemField
	taxonomies  []TaxonomyField
	assets      []AssetField
}

// NewNode creates a Node from an already-validated Item and its field
// groups. Field groups are validated individually by their constructors.
func NewNode(item Item, linked []LinkedItemField, taxonomies []TaxonomyField, assets []AssetField) Node {
	return Node{item: item, linkedItems: linked, taxonomies: taxonomies, assets: assets}
}

// Item returns the persistable entry.
func (n Node) Item() Item { return n.item }

// LinkedItemFields returns the linked-item field group.
func (n Node) LinkedItemFields() []LinkedItemField { return n.linkedItems }

// TaxonomyFields returns the taxonomy field group.
func (n Node) TaxonomyFields() []TaxonomyField { return n.taxonomies }

// AssetFields returns the asset field group.
func (n Node) AssetFields() []AssetField { return n.assets }
