package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/duckdb"
	"github.com/inodb/gogreat/internal/enrich"
	"github.com/inodb/gogreat/internal/output"
	"github.com/inodb/gogreat/internal/regions"
	"github.com/inodb/gogreat/internal/result"
)

type analyzeFlags struct {
	annot       annotationFlags
	colls       collectionFlags
	oneBased    bool
	outputFile  string
	assocFile   string
	summaryFile string
	ontologies  []string
	maxFDR      float64
	minObserved int
	top         int
	sortBy      string
	label       string
	save        bool
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [options] <regions.bed>",
		Short: "Run regulatory-domain enrichment on a region set",
		Example: `  gogreat analyze --gtf gencode.v46.annotation.gtf.gz --chrom-sizes hg38.chrom.sizes \
      --gmt h.all.v2024.1.Hs.symbols.gmt peaks.bed
  gogreat analyze --gtf genes.gtf --gaf goa_human.gaf.gz --obo go-basic.obo \
      --max-fdr 0.05 -o results.tsv.gz --associations pairs.tsv peaks.bed
  gogreat analyze --genes-bed genes.bed --gmt custom=sets.gmt --save --label ctcf peaks.bed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runAnalyze(ctx, args[0], &f)
		},
	}

	f.annot.register(cmd)
	f.colls.register(cmd)
	addRuleFlags(cmd)

	fl := cmd.Flags()
	fl.BoolVar(&f.oneBased, "one-based", false, "Region starts are 1-based")
	fl.StringVarP(&f.outputFile, "output", "o", "-", "Enrichment table output (.gz/.zst compress; '-' for stdout)")
	fl.StringVar(&f.assocFile, "associations", "", "Write region-gene associations to this file")
	fl.StringVar(&f.summaryFile, "summary", "", "Write per-collection term counts to this file")
	fl.StringSliceVar(&f.ontologies, "ontology", nil, "Only report these collections (default: all)")
	fl.Float64Var(&f.maxFDR, "max-fdr", 1.0, "Only report terms with binomial FDR at or below this value")
	fl.IntVar(&f.minObserved, "min-observed-genes", 1, "Only report terms with at least this many hit genes")
	fl.IntVar(&f.top, "top", 0, "Only report the top N terms of each collection")
	fl.StringVar(&f.sortBy, "sort-by", result.SortBinomP, "Ranking for --top: binom_p, hyper_p, binom_fold, hyper_fold")
	fl.BoolVar(&f.save, "save", false, "Store the run in the DuckDB database (--db)")
	fl.StringVar(&f.label, "label", "", "Run label when saving (default: region file name)")
	fl.Int("min-genes", enrich.DefaultMinGenes, "Smallest term size tested")
	fl.Int("max-genes", enrich.DefaultMaxGenes, "Largest term size tested")
	fl.Int("max-regions", regions.DefaultMaxRegions, "Maximum number of input regions")
	fl.Int("workers", 0, "Collections tested concurrently (default: number of CPUs)")

	return cmd
}

func runAnalyze(ctx context.Context, regionPath string, f *analyzeFlags) error {
	start := time.Now()

	params, err := domainParams()
	if err != nil {
		return err
	}
	opts := enrich.AnalyzeOptions{
		MinGenes:   viper.GetInt(keyMinGenes),
		MaxGenes:   viper.GetInt(keyMaxGenes),
		MaxRegions: viper.GetInt(keyMaxRegions),
		Workers:    viper.GetInt(keyWorkers),
	}

	rs, err := regions.Load(regionPath, regions.ReadOptions{MaxRegions: opts.MaxRegions, OneBased: f.oneBased})
	if err != nil {
		return err
	}
	logger.Info("loaded regions", zap.String("path", regionPath), zap.Int("regions", len(rs)))

	colls, err := f.colls.load()
	if err != nil {
		return err
	}
	store, err := loadStore(&f.annot, params)
	if err != nil {
		return err
	}

	engine, err := enrich.NewEngine(store, colls, logger)
	if err != nil {
		return err
	}
	res, err := engine.Analyze(ctx, rs, opts)
	if err != nil {
		return err
	}

	if err := writeResult(res, f); err != nil {
		return err
	}
	if f.assocFile != "" {
		if err := writeAssociations(f.assocFile, res.Associations); err != nil {
			return err
		}
	}
	if f.summaryFile != "" {
		if err := writeSummary(f.summaryFile, res.Summary()); err != nil {
			return err
		}
	}
	if f.save {
		label := f.label
		if label == "" {
			label = regionPath
		}
		id, err := saveRun(ctx, label, res)
		if err != nil {
			return err
		}
		logger.Info("saved run", zap.Int64("run_id", id), zap.String("label", label))
	}

	for _, s := range res.Summary() {
		logger.Info("collection tested",
			zap.String("ontology", s.Ontology),
			zap.Int("terms", s.Terms),
			zap.Int("significant", s.SignificantBinom))
	}
	logger.Info("analysis complete",
		zap.Int("regions", res.Metadata.NRegions),
		zap.Int("genes_hit", res.Metadata.NGenesHit),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// writeResult writes the filtered enrichment tables, flattened across
// collections with a leading ontology column.
func writeResult(res *result.Result, f *analyzeFlags) error {
	ontologies := f.ontologies
	if len(ontologies) == 0 {
		ontologies = res.Ontologies()
	}

	filtered := result.New(res.Metadata)
	for _, t := range res.Filter(ontologies, f.minObserved, f.maxFDR) {
		filtered.AddTable(t)
		if f.top > 0 {
			recs, err := filtered.Top(t.Ontology, f.top, f.sortBy)
			if err != nil {
				return err
			}
			t.Records = recs
		}
	}
	flat, err := filtered.Flat("")
	if err != nil {
		return err
	}

	return writeOutput(f.outputFile, func(w io.Writer) error {
		return output.NewTabWriter(w, true).WriteAll(flat)
	})
}

func writeAssociations(path string, rows []result.Association) error {
	return writeOutput(path, func(w io.Writer) error {
		if err := output.WriteAssociations(w, rows); err != nil {
			return fmt.Errorf("write associations: %w", err)
		}
		return nil
	})
}

func writeSummary(path string, rows []result.TableSummary) error {
	return writeOutput(path, func(w io.Writer) error {
		if err := output.WriteSummary(w, rows); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	})
}

// saveRun stores res in the configured DuckDB database.
func saveRun(ctx context.Context, label string, res *result.Result) (int64, error) {
	path := viper.GetString(keyDB)
	if path == "" {
		return 0, &usageError{msg: "--save requires --db (or db in the config file)"}
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.WriteRun(ctx, label, res)
}
