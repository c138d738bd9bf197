// Package enrich runs GREAT enrichment analyses: regions are associated
// with genes through their regulatory domains and every term of every
// gene-set collection is scored with a binomial test over regions and a
// hypergeometric test over genes.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/associate"
	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/genesets"
	"github.com/inodb/gogreat/internal/regions"
	"github.com/inodb/gogreat/internal/result"
)

// Default term size bounds.
const (
	DefaultMinGenes = 1
	DefaultMaxGenes = 10_000
)

// AnalyzeOptions controls one analysis run.
type AnalyzeOptions struct {
	MinGenes   int // smallest term tested, after translation
	MaxGenes   int // largest term tested, after translation
	MaxRegions int // region set size limit; 0 means regions.DefaultMaxRegions
	Workers    int // collections tested concurrently; 0 means NumCPU
}

// DefaultAnalyzeOptions returns the default term size bounds.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{MinGenes: DefaultMinGenes, MaxGenes: DefaultMaxGenes}
}

// prepared is a translated collection and the genome fraction of its terms.
type prepared struct {
	coll      *genesets.Collection
	fractions map[string]float64
}

// Engine binds a domain-computed gene annotation to gene-set collections.
// Construction translates gene symbols to gene IDs and precomputes every
// term's genome fraction; Analyze can then be called any number of times,
// concurrently.
type Engine struct {
	store           *genes.Store
	colls           []prepared
	warnings        []Warning
	totalGenomeSize int
	logger          *zap.Logger
}

// NewEngine creates an engine. The store must have computed domains and at
// least one collection is required.
func NewEngine(store *genes.Store, collections []*genesets.Collection, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w: annotation has no genes", genes.ErrInvalidAnnotation)
	}
	if err := store.RequireDomains(); err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return nil, errors.New("no gene-set collections")
	}

	e := &Engine{
		store:           store,
		totalGenomeSize: store.TotalDomainSize(),
		logger:          logger,
	}

	nameIndex, collisions := store.NameIndex(), store.SymbolCollisions()
	for _, c := range collections {
		tc, warnings := translate(c, nameIndex, collisions)
		e.warnings = append(e.warnings, warnings...)
		e.colls = append(e.colls, prepared{coll: tc, fractions: e.genomeFractions(tc)})

		dropped, ambiguous := 0, 0
		for _, w := range warnings {
			dropped += len(w.Dropped)
			ambiguous += len(w.Ambiguous)
			if len(w.Dropped) > 0 {
				logger.Debug("dropped unknown genes from term",
					zap.String("collection", c.Name),
					zap.String("term", w.TermID),
					zap.Strings("genes", w.Dropped))
			}
			if len(w.Ambiguous) > 0 {
				logger.Debug("identifiers resolved to gene ID over a matching symbol",
					zap.String("collection", c.Name),
					zap.String("term", w.TermID),
					zap.Strings("genes", w.Ambiguous))
			}
		}
		if dropped > 0 {
			logger.Warn("gene identifiers not found in annotation",
				zap.String("collection", c.Name),
				zap.Int("terms_affected", len(warnings)),
				zap.Int("genes_dropped", dropped))
		}
		if ambiguous > 0 {
			logger.Warn("gene identifiers match both a gene ID and another gene's symbol",
				zap.String("collection", c.Name),
				zap.Int("identifiers", ambiguous))
		}
	}

	return e, nil
}

// genomeFractions returns, per term, the summed domain width of its genes
// over the total domain width of the annotation.
func (e *Engine) genomeFractions(c *genesets.Collection) map[string]float64 {
	fractions := make(map[string]float64, c.Len())
	for _, gs := range c.Sets() {
		covered := 0
		for id := range gs.Genes {
			if g, ok := e.store.Get(id); ok {
				covered += g.DomainLen()
			}
		}
		fractions[gs.ID] = float64(covered) / float64(e.totalGenomeSize)
	}
	return fractions
}

// Warnings returns the identifier translation warnings of all collections.
func (e *Engine) Warnings() []Warning {
	return e.warnings
}

// Collections returns the translated collections in input order.
func (e *Engine) Collections() []*genesets.Collection {
	out := make([]*genesets.Collection, len(e.colls))
	for i, p := range e.colls {
		out[i] = p.coll
	}
	return out
}

// GenomeFraction returns a term's genome fraction within a collection.
func (e *Engine) GenomeFraction(collection, termID string) (float64, bool) {
	for _, p := range e.colls {
		if p.coll.Name == collection {
			f, ok := p.fractions[termID]
			return f, ok
		}
	}
	return 0, false
}

// TotalGenomeSize returns the total regulatory domain width, at least 1.
func (e *Engine) TotalGenomeSize() int {
	return e.totalGenomeSize
}

// Analyze associates rs with genes and tests every collection. Tables with
// no tested terms are omitted. Cancelling ctx stops testing between terms.
func (e *Engine) Analyze(ctx context.Context, rs regions.Set, opts AnalyzeOptions) (*result.Result, error) {
	if opts.MaxGenes <= 0 {
		opts.MaxGenes = DefaultMaxGenes
	}
	if err := rs.Validate(opts.MaxRegions); err != nil {
		return nil, err
	}

	start := time.Now()
	assoc, err := associate.Associate(rs, e.store)
	if err != nil {
		return nil, fmt.Errorf("associate regions: %w", err)
	}
	tester, err := NewTester(assoc, e.store.Len())
	if err != nil {
		return nil, err
	}
	e.logger.Info("associated regions",
		zap.Int("regions", assoc.NumRegions()),
		zap.Int("distinct_regions", assoc.Len()),
		zap.Int("genes_hit", tester.HitGenes()),
		zap.Duration("elapsed", time.Since(start)))

	params := e.store.Params()
	res := result.New(result.Metadata{
		Rule:         string(params.Rule),
		Upstream:     params.Upstream,
		Downstream:   params.Downstream,
		MaxExtension: params.MaxExtension,
		NRegions:     assoc.NumRegions(),
		NGenesHit:    tester.HitGenes(),
		NGenes:       e.store.Len(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem)
	go func() {
		defer close(items)
		for i, p := range e.colls {
			item := WorkItem{
				Seq:        i,
				Collection: p.coll.FilterBySize(opts.MinGenes, opts.MaxGenes),
				Fractions:  p.fractions,
			}
			select {
			case items <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	workers := opts.Workers
	if workers <= 0 || workers > len(e.colls) {
		workers = len(e.colls)
	}
	results := tester.ParallelTest(ctx, items, workers)

	err = OrderedCollect(results, cancel, func(r WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("test %s: %w", r.Name, r.Err)
		}
		e.logger.Info("tested collection",
			zap.String("collection", r.Name),
			zap.Int("terms", r.Table.Len()),
			zap.Duration("elapsed", r.Elapsed))
		if r.Table.Len() > 0 {
			res.AddTable(r.Table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Associations = AssociationRows(assoc, e.store)
	return res, nil
}

// AssociationRows expands associations into region-gene rows, in region
// order.
func AssociationRows(a *associate.Associations, s *genes.Store) []result.Association {
	pairs := a.Pairs()
	rows := make([]result.Association, 0, len(pairs))
	for _, p := range pairs {
		g, ok := s.Get(p.GeneID)
		if !ok {
			continue
		}
		rows = append(rows, result.Association{
			Region:   p.RegionKey,
			GeneID:   g.ID,
			GeneName: g.Name,
			Chrom:    g.Chrom,
			TSS:      g.TSS,
		})
	}
	return rows
}
