package duckdb

import (
	"database/sql"
	"fmt"

	"github.com/inodb/gogreat/internal/result"
)

const recordColumns = `ontology, term_id, term_name,
		binom_rank, binom_p, binom_bonferroni, binom_fdr, binom_fold_enrichment,
		observed_regions, expected_regions, genome_fraction,
		hyper_rank, hyper_p, hyper_bonferroni, hyper_fdr, hyper_fold_enrichment,
		observed_genes, expected_genes, total_genes`

const selectRecords = `SELECT ` + recordColumns + ` FROM results`

// flatRecordDest returns scan destinations for recordColumns.
func flatRecordDest(r *result.FlatRecord) []any {
	return []any{
		&r.Ontology, &r.TermID, &r.TermName,
		&r.BinomRank, &r.BinomP, &r.BinomBonferroni, &r.BinomFDR, &r.BinomFoldEnrichment,
		&r.ObservedRegions, &r.ExpectedRegions, &r.GenomeFraction,
		&r.HyperRank, &r.HyperP, &r.HyperBonferroni, &r.HyperFDR, &r.HyperFoldEnrichment,
		&r.ObservedGenes, &r.ExpectedGenes, &r.TotalGenes,
	}
}

func scanFlatRecords(rows *sql.Rows) ([]result.FlatRecord, error) {
	var out []result.FlatRecord
	for rows.Next() {
		var r result.FlatRecord
		if err := rows.Scan(flatRecordDest(&r)...); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

func toRecord(fr result.FlatRecord) result.Record {
	return result.Record{
		TermID:              fr.TermID,
		TermName:            fr.TermName,
		BinomRank:           fr.BinomRank,
		BinomP:              fr.BinomP,
		BinomBonferroni:     fr.BinomBonferroni,
		BinomFDR:            fr.BinomFDR,
		BinomFoldEnrichment: fr.BinomFoldEnrichment,
		ObservedRegions:     fr.ObservedRegions,
		ExpectedRegions:     fr.ExpectedRegions,
		GenomeFraction:      fr.GenomeFraction,
		HyperRank:           fr.HyperRank,
		HyperP:              fr.HyperP,
		HyperBonferroni:     fr.HyperBonferroni,
		HyperFDR:            fr.HyperFDR,
		HyperFoldEnrichment: fr.HyperFoldEnrichment,
		ObservedGenes:       fr.ObservedGenes,
		ExpectedGenes:       fr.ExpectedGenes,
		TotalGenes:          fr.TotalGenes,
	}
}
