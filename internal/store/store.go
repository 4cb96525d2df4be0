// Package store defines the typed graph store boundary the materializer
// writes into and the preview transport reads from. Backends live in the
// memory and redis subpackages.
package store

import "context"

// Node is the unit persisted in a collection: identity, owning logical
// type and a flat field map. Relationship fields hold plain id values;
// the typed link lives in the collection-level reference declarations.
type Node struct {
	ID        string         `json:"id"`
	TypeName  string         `json:"type_name"`
	Component bool           `json:"component,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Record reports the outcome of a node insertion.
type Record struct {
	Node Node
	// Created is false when a node with the same id already existed;
	// the record then carries the existing node unchanged.
	Created bool
	// IsComponent marks an embedded fragment rather than a standalone page.
	IsComponent bool
}

// Resolver computes a derived field value from a stored node and named,
// all-optional arguments.
type Resolver func(node Node, args map[string]any) (any, error)

// Collection is an addressable bucket of nodes of one logical type.
// Implementations are not safe for concurrent use; the materializer is
// strictly sequential by contract.
type Collection interface {
	// TypeName returns the logical type this collection holds.
	TypeName() string
	// FindNode looks up a node by id.
	FindNode(ctx context.Context, id string) (Node, bool, error)
	// AddNode inserts a node. Inserting an id that already exists is a
	// no-op returning the existing node with Created=false.
	AddNode(ctx context.Context, n Node) (Record, error)
	// AddReference declares a named reference field pointing at another
	// collection's type name. Redeclaring the same field is idempotent.
	AddReference(fieldName, typeName string)
	// Reference returns the declared target type for a field name.
	Reference(fieldName string) (string, bool)
	// Len returns the number of nodes held.
	Len(ctx context.Context) (int, error)
	// Nodes returns all nodes in insertion order.
	Nodes(ctx context.Context) ([]Node, error)
}

// Store is the typed graph store.
type Store interface {
	// Collection looks up an existing collection by type name.
	Collection(typeName string) (Collection, bool)
	// AddCollection creates a collection for a type name, or returns the
	// existing one (lazy creation is idempotent).
	AddCollection(typeName string) (Collection, error)
	// Collections returns all collections in creation order.
	Collections() []Collection
	// AddSchemaResolvers registers computed fields on a type. Later
	// registrations for the same type merge field-wise.
	AddSchemaResolvers(typeName string, resolvers map[string]Resolver) error
	// SchemaResolver looks up a registered computed field.
	SchemaResolver(typeName, fieldName string) (Resolver, bool)
	// Close releases backend resources.
	Close() error
}
