package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/output"
)

func newUCSCCmd() *cobra.Command {
	var (
		cfg       genes.UCSCConfig
		outputDir string
		bySymbol  bool
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "ucsc [options] <genome>",
		Short: "Import gene TSSs and chromosome sizes from the UCSC public MySQL server",
		Long: `Import a genePred table (ncbiRefSeq, knownGene, ...) and the chromInfo table of a
UCSC genome. Writes <genome>.<table>.bed (one-base TSS intervals, BED6) and
<genome>.chrom.sizes, ready for --genes-bed and --chrom-sizes.`,
		Example: `  gogreat ucsc hg38
  gogreat ucsc mm10 --table knownGene --symbol-column name2 --by-symbol -o ~/data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Genome = args[0]
			cfg.Host = viper.GetString(keyUCSCHost)
			cfg.User = viper.GetString(keyUCSCUser)
			if cfg.Table == "" {
				cfg.Table = viper.GetString(keyUCSCTable)
			}
			cfg.Timeout = timeout

			imp := genes.NewUCSCImporter(cfg)
			imp.SetLogger(logger)

			ctx := cmd.Context()
			store := genes.NewStore()
			if err := imp.Load(ctx, store); err != nil {
				return err
			}
			sizes, err := imp.ChromSizes(ctx)
			if err != nil {
				return err
			}

			table := cfg.Table
			if table == "" {
				table = genes.DefaultUCSCTable
			}
			genePath := filepath.Join(outputDir, fmt.Sprintf("%s.%s.bed", cfg.Genome, table))
			sizesPath := filepath.Join(outputDir, cfg.Genome+".chrom.sizes")

			if err := writeOutput(genePath, func(out io.Writer) error {
				return output.WriteGeneBED(out, store.Genes(), bySymbol)
			}); err != nil {
				return err
			}
			if err := writeOutput(sizesPath, func(out io.Writer) error {
				return output.WriteChromSizes(out, sizes)
			}); err != nil {
				return err
			}

			logger.Info("wrote UCSC import",
				zap.String("genes", genePath),
				zap.String("chrom_sizes", sizesPath),
				zap.Int("chromosomes", len(sizes)))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&cfg.Table, "table", "", "genePred table (default: ncbiRefSeq)")
	fl.StringVar(&cfg.SymbolColumn, "symbol-column", "name2", "Column holding gene symbols ('' to use name)")
	fl.BoolVar(&bySymbol, "by-symbol", false, "Key genes by symbol instead of transcript name")
	fl.DurationVar(&timeout, "timeout", 30*time.Second, "Connection and read timeout")
	fl.StringVarP(&outputDir, "output", "o", ".", "Output directory")
	fl.String("host", "", "MySQL host:port (default: "+genes.DefaultUCSCHost+")")
	fl.String("user", "", "MySQL user (default: "+genes.DefaultUCSCUser+")")
	return cmd
}
