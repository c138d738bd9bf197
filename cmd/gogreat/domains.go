package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/output"
)

func newDomainsCmd() *cobra.Command {
	var (
		annot      annotationFlags
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "domains [options]",
		Short: "Compute and export regulatory domains",
		Long: `Compute the regulatory domain of every gene under the configured association rule
and write them as a BED-like table (chrom, reg_start, reg_end, gene_id, gene_name,
tss, strand). Computed domains are cached for later analyses.`,
		Example: `  gogreat domains --gtf genes.gtf.gz --chrom-sizes hg38.chrom.sizes -o domains.bed
  gogreat domains --genes-bed genes.bed --rule twoClosest --max-extension 500000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := domainParams()
			if err != nil {
				return err
			}
			store, err := loadStore(&annot, params)
			if err != nil {
				return err
			}

			var sorted []*genes.Gene
			for _, chrom := range store.Chromosomes() {
				sorted = append(sorted, store.GenesByChrom(chrom)...)
			}

			return writeOutput(outputFile, func(w io.Writer) error {
				if err := output.WriteDomains(w, sorted); err != nil {
					return fmt.Errorf("write domains: %w", err)
				}
				return nil
			})
		},
	}
	annot.register(cmd)
	addRuleFlags(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Output file ('-' for stdout)")
	return cmd
}
