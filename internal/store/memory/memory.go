// Package memory is the default in-process store backend. The graph is
// build-time scratch space consumed by the same process, so nodes live in
// maps with a per-collection insertion-order index.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sitegraph-io/sitegraph/internal/domain"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory graph store.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
	order       []string
	resolvers   map[string]map[string]store.Resolver
	closed      bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]*Collection),
		resolvers:   make(map[string]map[string]store.Resolver),
	}
}

// Collection looks up a collection by type name.
func (s *Store) Collection(typeName string) (store.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[typeName]
	if !ok {
		return nil, false
	}
	return c, true
}

// AddCollection creates or returns the collection for a type name.
func (s *Store) AddCollection(typeName string) (store.Collection, error) {
	if typeName == "" {
		return nil, fmt.Errorf("collection type name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if c, ok := s.collections[typeName]; ok {
		return c, nil
	}
	c := &Collection{
		typeName:   typeName,
		nodes:      make(map[string]store.Node),
		references: make(map[string]string),
	}
	s.collections[typeName] = c
	s.order = append(s.order, typeName)
	return c, nil
}

// Collections returns all collections in creation order.
func (s *Store) Collections() []store.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Collection, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.collections[name])
	}
	return out
}

// AddSchemaResolvers registers computed fields on a type, merging field-wise.
func (s *Store) AddSchemaResolvers(typeName string, resolvers map[string]store.Resolver) error {
	if typeName == "" {
		return fmt.Errorf("schema resolver type name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	m, ok := s.resolvers[typeName]
	if !ok {
		m = make(map[string]store.Resolver, len(resolvers))
		s.resolvers[typeName] = m
	}
	for field, r := range resolvers {
		m[field] = r
	}
	return nil
}

// SchemaResolver looks up a registered computed field.
func (s *Store) SchemaResolver(typeName, fieldName string) (store.Resolver, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resolvers[typeName][fieldName]
	return r, ok
}

// Close marks the store closed; further mutations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Collection is an in-memory node bucket with insertion-order tracking.
type Collection struct {
	typeName   string
	nodes      map[string]store.Node
	order      []string
	references map[string]string
}

var _ store.Collection = (*Collection)(nil)

// TypeName returns the logical type this collection holds.
func (c *Collection) TypeName() string { return c.typeName }

// FindNode looks up a node by id.
func (c *Collection) FindNode(_ context.Context, id string) (store.Node, bool, error) {
	n, ok := c.nodes[id]
	return n, ok, nil
}

// AddNode inserts a node, or returns the existing one unchanged.
func (c *Collection) AddNode(_ context.Context, n store.Node) (store.Record, error) {
	if n.ID == "" {
		return store.Record{}, fmt.Errorf("%w: node id is required", domain.ErrInvalidNode)
	}
	if existing, ok := c.nodes[n.ID]; ok {
		return store.Record{Node: existing, Created: false, IsComponent: existing.Component}, nil
	}
	c.nodes[n.ID] = n
	c.order = append(c.order, n.ID)
	return store.Record{Node: n, Created: true, IsComponent: n.Component}, nil
}

// AddReference declares a named reference field; redeclaration is idempotent.
func (c *Collection) AddReference(fieldName, typeName string) {
	c.references[fieldName] = typeName
}

// Reference returns the declared target type for a field name.
func (c *Collection) Reference(fieldName string) (string, bool) {
	t, ok := c.references[fieldName]
	return t, ok
}

// Len returns the number of nodes held.
func (c *Collection) Len(_ context.Context) (int, error) {
	return len(c.order), nil
}

// Nodes returns all nodes in insertion order.
func (c *Collection) Nodes(_ context.Context) ([]store.Node, error) {
	out := make([]store.Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out, nil
}
