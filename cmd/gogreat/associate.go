package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/associate"
	"github.com/inodb/gogreat/internal/enrich"
	"github.com/inodb/gogreat/internal/regions"
)

func newAssociateCmd() *cobra.Command {
	var (
		annot      annotationFlags
		oneBased   bool
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "associate [options] <regions.bed>",
		Short: "List the genes whose regulatory domains overlap each region",
		Example: `  gogreat associate --gtf genes.gtf.gz --chrom-sizes hg38.chrom.sizes peaks.bed
  gogreat associate --genes-bed genes.bed -o pairs.tsv.gz peaks.bed.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := domainParams()
			if err != nil {
				return err
			}
			rs, err := regions.Load(args[0], regions.ReadOptions{
				MaxRegions: viper.GetInt(keyMaxRegions),
				OneBased:   oneBased,
			})
			if err != nil {
				return err
			}
			store, err := loadStore(&annot, params)
			if err != nil {
				return err
			}

			assoc, err := associate.Associate(rs, store)
			if err != nil {
				return err
			}
			logger.Info("associated regions",
				zap.Int("regions", assoc.NumRegions()),
				zap.Int("genes_hit", len(assoc.HitGenes())))
			return writeAssociations(outputFile, enrich.AssociationRows(assoc, store))
		},
	}
	annot.register(cmd)
	addRuleFlags(cmd)
	cmd.Flags().BoolVar(&oneBased, "one-based", false, "Region starts are 1-based")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Output file ('-' for stdout)")
	return cmd
}
