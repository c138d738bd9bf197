package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/gogreat/internal/result"
)

// RunInfo describes one stored analysis run.
type RunInfo struct {
	ID        int64
	Label     string
	CreatedAt time.Time
	Metadata  result.Metadata
}

// WriteRun stores an analysis result under a new run ID and returns it.
// Records and associations are batch-inserted using the Appender API.
func (s *Store) WriteRun(ctx context.Context, label string, res *result.Result) (int64, error) {
	var runID int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(run_id), 0) + 1 FROM runs").Scan(&runID); err != nil {
		return 0, fmt.Errorf("next run id: %w", err)
	}

	m := res.Metadata
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, label, time.Now().UTC(), m.Rule,
		int64(m.Upstream), int64(m.Downstream), int64(m.MaxExtension),
		int64(m.NRegions), int64(m.NGenesHit), int64(m.NGenes),
	); err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	if err := s.appendResults(ctx, runID, res); err != nil {
		return 0, err
	}
	if err := s.appendAssociations(ctx, runID, res.Associations); err != nil {
		return 0, err
	}
	return runID, nil
}

// withAppender runs fn with an appender on table and flushes it.
func (s *Store) withAppender(ctx context.Context, table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

func (s *Store) appendResults(ctx context.Context, runID int64, res *result.Result) error {
	return s.withAppender(ctx, "results", func(a *goduckdb.Appender) error {
		for idx, t := range res.Tables() {
			for _, r := range t.Records {
				if err := a.AppendRow(
					runID, int32(idx), t.Ontology, r.TermID, r.TermName,
					int64(r.BinomRank), r.BinomP, r.BinomBonferroni, r.BinomFDR, r.BinomFoldEnrichment,
					int64(r.ObservedRegions), r.ExpectedRegions, r.GenomeFraction,
					r.HyperRank, r.HyperP, r.HyperBonferroni, r.HyperFDR, r.HyperFoldEnrichment,
					int64(r.ObservedGenes), r.ExpectedGenes, int64(r.TotalGenes),
				); err != nil {
					return fmt.Errorf("append result %s/%s: %w", t.Ontology, r.TermID, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) appendAssociations(ctx context.Context, runID int64, rows []result.Association) error {
	if len(rows) == 0 {
		return nil
	}
	return s.withAppender(ctx, "associations", func(a *goduckdb.Appender) error {
		for _, r := range rows {
			if err := a.AppendRow(runID, r.Region, r.GeneID, r.GeneName, r.Chrom, int64(r.TSS)); err != nil {
				return fmt.Errorf("append association: %w", err)
			}
		}
		return nil
	})
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, label, created_at, rule, upstream, downstream, max_extension,
		n_regions, n_genes_hit, n_genes
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var upstream, downstream, maxExt, nRegions, nHit, nGenes int64
		if err := rows.Scan(&r.ID, &r.Label, &r.CreatedAt, &r.Metadata.Rule,
			&upstream, &downstream, &maxExt, &nRegions, &nHit, &nGenes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Metadata.Upstream = int(upstream)
		r.Metadata.Downstream = int(downstream)
		r.Metadata.MaxExtension = int(maxExt)
		r.Metadata.NRegions = int(nRegions)
		r.Metadata.NGenesHit = int(nHit)
		r.Metadata.NGenes = int(nGenes)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LoadRun rebuilds the result of a stored run.
func (s *Store) LoadRun(ctx context.Context, runID int64) (*result.Result, error) {
	var info *RunInfo
	runs, err := s.Runs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].ID == runID {
			info = &runs[i]
			break
		}
	}
	if info == nil {
		return nil, fmt.Errorf("run %d: %w", runID, sql.ErrNoRows)
	}

	res := result.New(info.Metadata)
	rows, err := s.db.QueryContext(ctx, selectRecords+`
		WHERE run_id = ?
		ORDER BY ontology_idx, binom_rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	recs, err := scanFlatRecords(rows)
	if err != nil {
		return nil, err
	}
	var cur *result.Table
	for _, fr := range recs {
		if cur == nil || cur.Ontology != fr.Ontology {
			cur = &result.Table{Ontology: fr.Ontology}
			res.AddTable(cur)
		}
		cur.Records = append(cur.Records, toRecord(fr))
	}

	res.Associations, err = s.associations(ctx, runID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) associations(ctx context.Context, runID int64) ([]result.Association, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT region, gene_id, gene_name, chrom, tss
		FROM associations WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()

	var out []result.Association
	for rows.Next() {
		var a result.Association
		var tss int64
		if err := rows.Scan(&a.Region, &a.GeneID, &a.GeneName, &a.Chrom, &tss); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		a.TSS = int(tss)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}
	return out, nil
}

// SearchTerms returns records of every run whose term ID or name matches
// pattern (case-insensitive SQL LIKE) with BinomFDR <= maxFDR.
func (s *Store) SearchTerms(ctx context.Context, pattern string, maxFDR float64) ([]TermHit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, `+recordColumns+`
		FROM results
		WHERE (term_id ILIKE ? OR term_name ILIKE ?) AND binom_fdr <= ?
		ORDER BY run_id, binom_p`, pattern, pattern, maxFDR)
	if err != nil {
		return nil, fmt.Errorf("search terms: %w", err)
	}
	defer rows.Close()

	var hits []TermHit
	for rows.Next() {
		var h TermHit
		dest := append([]any{&h.RunID}, flatRecordDest(&h.Record)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}
	return hits, nil
}

// TermHit is a stored record and the run it belongs to.
type TermHit struct {
	RunID  int64
	Record result.FlatRecord
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, runID int64) error {
	for _, table := range []string{"associations", "results", "runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}
