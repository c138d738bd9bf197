package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/inodb/gogreat/internal/genes"
	"github.com/inodb/gogreat/internal/regions"
)

func newRandomCmd() *cobra.Command {
	var (
		chromSizes string
		n          int
		width      int
		seed       uint32
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "random [options]",
		Short: "Generate a uniformly random background region set",
		Example: `  gogreat random --chrom-sizes hg38.chrom.sizes -n 5000 --width 500 --seed 7 -o background.bed`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := genes.LoadChromSizes(chromSizes)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint32(time.Now().UnixNano())
			}
			rs, err := regions.Random(n, width, sizes, seed)
			if err != nil {
				return err
			}

			return writeOutput(outputFile, rs.Write)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&chromSizes, "chrom-sizes", "", "Chromosome sizes file (chrom<TAB>size)")
	fl.IntVarP(&n, "count", "n", 1000, "Number of regions")
	fl.IntVar(&width, "width", 1000, "Region width in bp")
	fl.Uint32Var(&seed, "seed", 0, "Random seed (default: time based)")
	fl.StringVarP(&outputFile, "output", "o", "-", "Output BED file ('-' for stdout)")
	_ = cmd.MarkFlagRequired("chrom-sizes")
	return cmd
}
