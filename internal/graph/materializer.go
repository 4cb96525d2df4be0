// Package graph is the materialization engine: it walks the remote API's
// content types, taxonomy vocabularies and entries, and writes a typed,
// reference-linked node graph into the store.
package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitegraph-io/sitegraph/internal/config"
	asst "github.com/sitegraph-io/sitegraph/internal/domain/asset"
	"github.com/sitegraph-io/sitegraph/internal/graph/imageurl"
	"github.com/sitegraph-io/sitegraph/internal/logger"
	"github.com/sitegraph-io/sitegraph/internal/metrics"
	"github.com/sitegraph-io/sitegraph/internal/store"
)

// Options configures a Materializer.
type Options struct {
	// ReferencePolicy decides multi-type linked-item field resolution.
	ReferencePolicy string
	// PathPrefix is prepended to derived item-link paths.
	PathPrefix string
	// Logger is attached to the run context; nil means no logging.
	Logger *zap.Logger
}

// Materializer is the top-level orchestrator. One Run materializes the
// whole graph or fails as a whole: there is no partial-success mode, and
// every step is strictly sequential so the dedup and ordering invariants
// hold without locking.
type Materializer struct {
	fetcher   Fetcher
	registry  *Registry
	taxonomy  *TaxonomyBuilder
	assembler *Assembler
	logger    *zap.Logger
}

// NewMaterializer wires the engine components.
func NewMaterializer(f Fetcher, opts Options) *Materializer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReferencePolicy == "" {
		opts.ReferencePolicy = config.PolicyFirstTypeWins
	}
	registry := NewRegistry()
	refs := NewReferenceResolver(opts.ReferencePolicy)
	return &Materializer{
		fetcher:   f,
		registry:  registry,
		taxonomy:  NewTaxonomyBuilder(f),
		assembler: NewAssembler(f, registry, refs, opts.PathPrefix),
		logger:    opts.Logger,
	}
}

// Run materializes the content graph into the store:
// register type resolvers, build taxonomy, assemble content per type in
// API order, then register the image-URL schema resolver if any asset
// nodes exist.
func (m *Materializer) Run(ctx context.Context, st store.Store) error {
	start := time.Now()
	ctx = logger.ContextWithLogger(ctx, m.logger)

	types, err := m.fetcher.Types(ctx)
	if err != nil {
		return fmt.Errorf("content types: %w", err)
	}
	m.registry.RegisterTypes(types)
	m.logger.Info("content types registered", zap.Int("count", len(types)))

	// Taxonomy before content: content nodes reference taxonomy collections.
	if err := m.taxonomy.BuildAll(ctx, st); err != nil {
		return fmt.Errorf("build taxonomy: %w", err)
	}

	for _, t := range types {
		if err := m.assembler.AssembleType(ctx, st, t); err != nil {
			return fmt.Errorf("assemble type %s: %w", t.Codename(), err)
		}
	}

	if err := m.registerImageResolvers(ctx, st); err != nil {
		return err
	}

	elapsed := time.Since(start)
	metrics.LoadDuration.Observe(elapsed.Seconds())
	m.logger.Info("content graph materialized",
		zap.Int("types", len(types)),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// registerImageResolvers exposes the computed url field on the asset type.
// Registered once, after all asset nodes exist, and only if any do.
func (m *Materializer) registerImageResolvers(ctx context.Context, st store.Store) error {
	col, ok := st.Collection(asst.CollectionType)
	if !ok {
		return nil
	}
	n, err := col.Len(ctx)
	if err != nil {
		return fmt.Errorf("asset collection size: %w", err)
	}
	if n == 0 {
		return nil
	}
	if err := st.AddSchemaResolvers(asst.CollectionType, map[string]store.Resolver{
		"url": imageurl.Resolver(),
	}); err != nil {
		return fmt.Errorf("register image url resolver: %w", err)
	}
	m.logger.Debug("image url resolver registered", zap.Int("assets", n))
	return nil
}
