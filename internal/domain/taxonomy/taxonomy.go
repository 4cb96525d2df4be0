package taxonomy

import "fmt"

// CollectionTypePrefix prefixes generated taxonomy collection type names so
// they never collide with content type codenames.
const CollectionTypePrefix = "taxonomy_"

// Group is a taxonomy vocabulary (immutable value object).
// Identity is the group codename; it owns an ordered forest of terms.
type Group struct {
	codename string
	name     string
	terms    []Term
}

// NewGroup validates and creates a Group.
func NewGroup(codename, name string, terms []Term) (Group, error) {
	if codename == "" {
		return Group{}, fmt.Errorf("taxonomy group codename is required")
	}
	return Group{codename: codename, name: name, terms: terms}, nil
}

// Codename returns the group codename.
func (g Group) Codename() string { return g.codename }

// Name returns the display name.
func (g Group) Name() string { return g.name }

// Terms returns the root terms of the group's forest.
func (g Group) Terms() []Term { return g.terms }

// CollectionType returns the generated collection type name for this group.
func (g Group) CollectionType() string { return CollectionType(g.codename) }

// CollectionType derives the collection type name for a group codename.
func CollectionType(groupCodename string) string {
	return CollectionTypePrefix + groupCodename
}

// Term is one taxonomy term (immutable value object). Ownership of child
// terms is a tree; a term node in the store references its direct children
// by id only, never by embedded copy.
type Term struct {
	id       string
	name     string
	slug     string
	children []Term
}

// NewTerm validates and creates a Term.
// A nil or missing child list is treated as empty, never as an error,
// so one malformed term cannot abort a whole tree.
func NewTerm(id, name, slug string, children []Term) (Term, error) {
	if id == "" {
		return Term{}, fmt.Errorf("taxonomy term id is required")
	}
	return Term{id: id, name: name, slug: slug, children: children}, nil
}

// ID returns the term identifier.
func (t Term) ID() string { return t.id }

// Name returns the term display name.
func (t Term) Name() string { return t.name }

// Slug returns the term slug.
func (t Term) Slug() string { return t.slug }

// Children returns the direct child terms in order.
func (t Term) Children() []Term { return t.children }

// ChildIDs returns the ids of the direct children in order.
func (t Term) ChildIDs() []string {
	if len(t.children) == 0 {
		return nil
	}
	ids := make([]string, len(t.children))
	for i, c := range t.children {
		ids[i] = c.id
	}
	return ids
}
