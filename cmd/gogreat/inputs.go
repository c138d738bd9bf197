package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/duckdb"
	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/genesets"
	"github.com/inodb/gogreat/internal/output"
)

// annotationFlags selects the gene annotation and chromosome sizes.
type annotationFlags struct {
	gtf        string
	bed        string
	chromSizes string
	noCache    bool
}

func (f *annotationFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.gtf, "gtf", "", "Gene annotation in GTF/GFF format")
	fl.StringVar(&f.bed, "genes-bed", "", "Gene annotation in BED6 format (name column is the gene ID)")
	fl.StringVar(&f.chromSizes, "chrom-sizes", "", "Chromosome sizes file (chrom<TAB>size)")
	fl.BoolVar(&f.noCache, "no-cache", false, "Do not read or write the regulatory domain cache")
	fl.String("feature-type", "gene", "GTF feature type holding genes")
	fl.String("gene-id-attr", "gene_id", "GTF attribute holding the gene ID")
	fl.String("gene-name-attr", "gene_name", "GTF attribute holding the gene symbol")
	fl.Bool("strip-version", false, "Drop version suffixes from gene IDs (ENSG...1 -> ENSG...)")
	cmd.MarkFlagsMutuallyExclusive("gtf", "genes-bed")
	cmd.MarkFlagsOneRequired("gtf", "genes-bed")
}

func (f *annotationFlags) path() string {
	if f.gtf != "" {
		return f.gtf
	}
	return f.bed
}

// addRuleFlags adds the association rule flags to cmd.
func addRuleFlags(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.String("rule", string(genes.BasalPlusExt), "Association rule: basalPlusExt, twoClosest or oneClosest")
	fl.Int("upstream", genes.DefaultUpstream, "Basal domain upstream extent in bp")
	fl.Int("downstream", genes.DefaultDownstream, "Basal domain downstream extent in bp")
	fl.Int("max-extension", genes.DefaultMaxExtension, "Maximum domain extension from the TSS in bp")
}

// domainParams reads the association rule from configuration.
func domainParams() (genes.DomainParams, error) {
	rule, err := genes.ParseRule(viper.GetString(keyRule))
	if err != nil {
		return genes.DomainParams{}, err
	}
	return genes.DomainParams{
		Rule:         rule,
		Upstream:     viper.GetInt(keyUpstream),
		Downstream:   viper.GetInt(keyDownstream),
		MaxExtension: viper.GetInt(keyMaxExtension),
	}, nil
}

// loadOptions reads the GTF loader settings from configuration.
func loadOptions() genes.LoadOptions {
	return genes.LoadOptions{
		FeatureType:  viper.GetString(keyFeatureType),
		IDAttr:       viper.GetString(keyGeneIDAttr),
		NameAttr:     viper.GetString(keyGeneNameAttr),
		StripVersion: viper.GetBool(keyStripVersion),
	}
}

// cacheDir returns the domain cache directory for an annotation file.
func cacheDir(annotPath string) string {
	dir := viper.GetString(keyCacheDir)
	if dir == "" {
		dir = filepath.Join(defaultDataDir(), "cache")
	}
	base := filepath.Base(annotPath)
	return filepath.Join(dir, strings.ReplaceAll(base, ".", "_"))
}

// loadStore loads the gene annotation and computes regulatory domains,
// reusing the on-disk domain cache when its source fingerprints, loader
// settings and rule parameters match.
func loadStore(f *annotationFlags, params genes.DomainParams) (*genes.Store, error) {
	annotFP, err := duckdb.StatFile(f.path())
	if err != nil {
		return nil, fmt.Errorf("annotation: %w", err)
	}
	sizesFP, err := duckdb.StatFile(f.chromSizes)
	if err != nil {
		return nil, fmt.Errorf("chrom sizes: %w", err)
	}

	src := duckdb.DomainSource{Annotation: annotFP, ChromSizes: sizesFP, Format: "bed"}
	if f.gtf != "" {
		src.Format = "gtf"
		src.Options = loadOptions()
	}

	dc := duckdb.NewDomainCache(cacheDir(f.path()))
	if !f.noCache && dc.Valid(src, params) {
		store, err := dc.Load()
		if err == nil {
			logger.Info("loaded cached regulatory domains",
				zap.String("annotation", f.path()),
				zap.Int("genes", store.Len()))
			return store, nil
		}
		logger.Warn("domain cache unreadable, rebuilding", zap.Error(err))
	}

	var store *genes.Store
	if f.gtf != "" {
		store, err = genes.LoadGTF(f.gtf, src.Options, logger)
	} else {
		store, err = genes.LoadBED(f.bed, logger)
	}
	if err != nil {
		return nil, err
	}

	if f.chromSizes != "" {
		sizes, err := genes.LoadChromSizes(f.chromSizes)
		if err != nil {
			return nil, err
		}
		store.SetChromSizes(sizes)
	} else {
		logger.Warn("no chromosome sizes given, using default size",
			zap.Int("size", genes.DefaultChromSize))
	}

	if err := store.ComputeDomains(params); err != nil {
		return nil, err
	}
	logger.Info("computed regulatory domains",
		zap.String("rule", string(params.Rule)),
		zap.Int("genes", store.Len()),
		zap.Int("chromosomes", len(store.Chromosomes())))

	if !f.noCache {
		if err := dc.Write(store, src); err != nil {
			logger.Warn("could not write domain cache", zap.Error(err))
		}
	}
	return store, nil
}

// collectionFlags selects the gene-set collections to test.
type collectionFlags struct {
	gmt    []string
	msigdb []string
	gaf    string
	obo    string
}

func (f *collectionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringArrayVar(&f.gmt, "gmt", nil, "Gene-set collection in GMT format (repeatable; NAME=PATH sets the name)")
	fl.StringArrayVar(&f.msigdb, "msigdb", nil, "MSigDB GMT file, split into collections by ID prefix (repeatable)")
	fl.StringVar(&f.gaf, "gaf", "", "GO annotations in GAF format")
	fl.StringVar(&f.obo, "obo", "", "GO ontology in OBO format, for term names")
}

// load reads every selected collection, in flag order: GMT, MSigDB, GO.
func (f *collectionFlags) load() ([]*genesets.Collection, error) {
	var colls []*genesets.Collection
	for _, arg := range f.gmt {
		name, path := splitNamedPath(arg)
		c, err := genesets.LoadGMT(path, name)
		if err != nil {
			return nil, err
		}
		colls = append(colls, c)
	}
	for _, path := range f.msigdb {
		c, err := genesets.LoadGMT(path, "")
		if err != nil {
			return nil, err
		}
		colls = append(colls, genesets.SplitByPrefix(c)...)
	}
	if f.gaf != "" {
		gl := genesets.NewGOLoader(f.gaf, f.obo)
		gl.SetLogger(logger)
		gos, err := gl.Load()
		if err != nil {
			return nil, err
		}
		colls = append(colls, gos...)
	}
	if len(colls) == 0 {
		return nil, &usageError{msg: "at least one of --gmt, --msigdb or --gaf is required"}
	}
	for _, c := range colls {
		logger.Debug("loaded collection", zap.String("name", c.Name), zap.Int("terms", c.Len()))
	}
	return colls, nil
}

// splitNamedPath splits NAME=PATH; a plain path has an empty name.
func splitNamedPath(arg string) (name, path string) {
	if n, p, ok := strings.Cut(arg, "="); ok && n != "" && p != "" {
		return n, p
	}
	return "", arg
}

// writeOutput creates path (compressed by suffix, "-" for stdout) and
// passes it to fn.
func writeOutput(path string, fn func(w io.Writer) error) error {
	out, err := output.Create(path)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
