package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/sitegraph-io/sitegraph/internal/domain"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

var _ store.Collection = (*Collection)(nil)

// Collection is a Redis-backed node bucket. Node bodies live in Redis as
// JSON documents; the id index and reference declarations are scoped to
// the current build and stay in-process.
type Collection struct {
	store      *Store
	typeName   string
	ids        map[string]bool
	order      []string
	references map[string]string
}

// TypeName returns the logical type this collection holds.
func (c *Collection) TypeName() string { return c.typeName }

// FindNode looks up a node inserted during this build.
func (c *Collection) FindNode(ctx context.Context, id string) (store.Node, bool, error) {
	if !c.ids[id] {
		return store.Node{}, false, nil
	}
	n, err := c.getNode(ctx, id)
	if err != nil {
		return store.Node{}, false, err
	}
	return n, true, nil
}

// AddNode persists a node, or returns the existing one unchanged.
func (c *Collection) AddNode(ctx context.Context, n store.Node) (store.Record, error) {
	if n.ID == "" {
		return store.Record{}, fmt.Errorf("%w: node id is required", domain.ErrInvalidNode)
	}
	if c.ids[n.ID] {
		existing, err := c.getNode(ctx, n.ID)
		if err != nil {
			return store.Record{}, err
		}
		return store.Record{Node: existing, Created: false, IsComponent: existing.Component}, nil
	}

	data, err := json.Marshal(n)
	if err != nil {
		return store.Record{}, fmt.Errorf("marshal node %s: %w", n.ID, err)
	}
	key := c.store.nodeKey(c.typeName, n.ID)
	cmd := c.store.client.B().Arbitrary("JSON.SET").Keys(key).Args("$", string(data)).Build()
	if err := c.store.client.Do(ctx, cmd).Error(); err != nil {
		return store.Record{}, fmt.Errorf("json.set %s: %w", key, err)
	}

	c.ids[n.ID] = true
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

// Len returns the number of nodes inserted during this build.
func (c *Collection) Len(_ context.Context) (int, error) {
	return len(c.order), nil
}

// Nodes returns all nodes in insertion order.
func (c *Collection) Nodes(ctx context.Context) ([]store.Node, error) {
	out := make([]store.Node, 0, len(c.order))
	for _, id := range c.order {
		n, err := c.getNode(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Collection) getNode(ctx context.Context, id string) (store.Node, error) {
	key := c.store.nodeKey(c.typeName, id)
	cmd := c.store.client.B().Arbitrary("JSON.GET").Keys(key).Args("$").Build()
	raw, err := c.store.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return store.Node{}, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
		}
		return store.Node{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	// JSON.GET with a $ path wraps the document in a one-element array.
	var nodes []store.Node
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		return store.Node{}, fmt.Errorf("unmarshal node %s: %w", id, err)
	}
	if len(nodes) == 0 {
		return store.Node{}, fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nodes[0], nil
}
