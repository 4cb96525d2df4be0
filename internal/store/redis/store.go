// Package redis is a persistent store backend over Redis JSON documents.
// Nodes are persisted per build under <prefix><type>:<id>; reference and
// schema-resolver declarations are build-time state and stay in-process.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/rueidis"

	"github.com/sitegraph-io/sitegraph/internal/domain"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store is a Redis-backed graph store.
type Store struct {
	client rueidis.Client
	prefix string

	mu          sync.Mutex
	collections map[string]*Collection
	order       []string
	resolvers   map[string]map[string]store.Resolver
	closed      bool
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newStore(client, cfg.KeyPrefix), nil
}

// NewStoreForTest wraps an existing (mock) client.
func NewStoreForTest(client rueidis.Client, prefix string) *Store {
	return newStore(client, prefix)
}

func newStore(client rueidis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "sitegraph:"
	}
	return &Store{
		client:      client,
		prefix:      prefix,
		collections: make(map[string]*Collection),
		resolvers:   make(map[string]map[string]store.Resolver),
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for redis: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
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
		store:      s,
		typeName:   typeName,
		ids:        make(map[string]bool),
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

// Close shuts down the client.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Close()
	return nil
}

func (s *Store) nodeKey(typeName, id string) string {
	return s.prefix + typeName + ":" + id
}
