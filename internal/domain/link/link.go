package link

import (
	"fmt"
	"strings"
)

// CollectionType is the collection holding derived ItemLink nodes.
const CollectionType = "item_link"

// ItemLink is a derived record mapping a content entry id to its resolved
// page path, consumed by downstream in-content link resolution. One exists
// per non-component content node; identity is the originating node's id.
type ItemLink struct {
	id       string
	typeName string
	path     string
}

// New validates and creates an ItemLink.
func New(id, typeName, path string) (ItemLink, error) {
	if id == "" {
		return ItemLink{}, fmt.Errorf("item link id is required")
	}
	if typeName == "" {
		return ItemLink{}, fmt.Errorf("item link %s: type name is required", id)
	}
	if path == "" {
		return ItemLink{}, fmt.Errorf("item link %s: path is required", id)
	}
	return ItemLink{id: id, typeName: typeName, path: path}, nil
}

// ID returns the originating content node id.
func (l ItemLink) ID() string { return l.id }

// TypeName returns the originating node's content type codename.
func (l ItemLink) TypeName() string { return l.typeName }

// Path returns the resolved page path.
func (l ItemLink) Path() string { return l.path }

// Path derives the page path for an entry: prefix + "/" + type + "/" + slug.
// The prefix may be empty; leading and trailing slashes are normalized.
func Path(prefix, typeName, slug string) string {
	p := "/" + typeName + "/" + slug
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		p = "/" + prefix + p
	}
	return p
}
