package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/gogreat/internal/duckdb"
	"github.com/inodb/gogreat/internal/output"
	"github.com/inodb/gogreat/internal/result"
)

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Inspect analysis runs stored in the DuckDB database",
		Example: `  gogreat --db runs.duckdb query runs
  gogreat --db runs.duckdb query show 3 --ontology Hallmark
  gogreat --db runs.duckdb query search '%apoptosis%' --max-fdr 0.05
  gogreat --db runs.duckdb query delete 3`,
	}
	cmd.AddCommand(newQueryRunsCmd(), newQueryShowCmd(), newQuerySearchCmd(), newQueryDeleteCmd())
	return cmd
}

// openDB opens the configured run database.
func openDB() (*duckdb.Store, error) {
	path := viper.GetString(keyDB)
	if path == "" {
		return nil, &usageError{msg: "no database configured, use --db or set db in the config file"}
	}
	return duckdb.Open(path)
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, &usageError{msg: fmt.Sprintf("invalid run id %q", arg)}
	}
	return id, nil
}

func newQueryRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.Runs(cmd.Context())
			if err != nil {
				return err
			}
			return writeRuns(cmd.OutOrStdout(), runs)
		},
	}
}

func writeRuns(w io.Writer, runs []duckdb.RunInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tLABEL\tRULE\tREGIONS\tGENES HIT\tGENES")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Label, r.Metadata.Rule,
			r.Metadata.NRegions, r.Metadata.NGenesHit, r.Metadata.NGenes)
	}
	return tw.Flush()
}

func newQueryShowCmd() *cobra.Command {
	var (
		ontology   string
		maxFDR     float64
		outputFile string
	)
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Export the enrichment table of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.LoadRun(cmd.Context(), id)
			if err != nil {
				return err
			}
			ontologies := res.Ontologies()
			if ontology != "" {
				ontologies = []string{ontology}
			}
			filtered := result.New(res.Metadata)
			for _, t := range res.Filter(ontologies, 1, maxFDR) {
				filtered.AddTable(t)
			}
			flat, err := filtered.Flat("")
			if err != nil {
				return err
			}
			return writeOutput(outputFile, func(w io.Writer) error {
				return output.NewTabWriter(w, true).WriteAll(flat)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&ontology, "ontology", "", "Only show this collection")
	fl.Float64Var(&maxFDR, "max-fdr", 1.0, "Only show terms with binomial FDR at or below this value")
	fl.StringVarP(&outputFile, "output", "o", "-", "Output file ('-' for stdout)")
	return cmd
}

func newQuerySearchCmd() *cobra.Command {
	var maxFDR float64
	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Find terms across runs by ID or name (SQL LIKE pattern, case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			hits, err := db.SearchTerms(cmd.Context(), args[0], maxFDR)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tONTOLOGY\tTERM\tNAME\tBINOM P\tBINOM FDR\tHYPER P")
			for _, h := range hits {
				r := h.Record
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3g\t%.3g\t%.3g\n",
					h.RunID, r.Ontology, r.TermID, r.TermName, r.BinomP, r.BinomFDR, r.HyperP)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&maxFDR, "max-fdr", 1.0, "Only show terms with binomial FDR at or below this value")
	return cmd
}

func newQueryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRun(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %d\n", id)
			return nil
		},
	}
}
