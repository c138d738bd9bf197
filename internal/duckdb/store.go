// Package duckdb persists enrichment runs in DuckDB (queryable,
// append-only) and caches domain-computed gene annotations as gob files.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding analysis runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id BIGINT PRIMARY KEY,
			label VARCHAR,
			created_at TIMESTAMP,
			rule VARCHAR,
			upstream BIGINT,
			downstream BIGINT,
			max_extension BIGINT,
			n_regions BIGINT,
			n_genes_hit BIGINT,
			n_genes BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id BIGINT,
			ontology_idx INTEGER,
			ontology VARCHAR,
			term_id VARCHAR,
			term_name VARCHAR,
			binom_rank BIGINT,
			binom_p DOUBLE,
			binom_bonferroni DOUBLE,
			binom_fdr DOUBLE,
			binom_fold_enrichment DOUBLE,
			observed_regions BIGINT,
			expected_regions DOUBLE,
			genome_fraction DOUBLE,
			hyper_rank DOUBLE,
			hyper_p DOUBLE,
			hyper_bonferroni DOUBLE,
			hyper_fdr DOUBLE,
			hyper_fold_enrichment DOUBLE,
			observed_genes BIGINT,
			expected_genes DOUBLE,
			total_genes BIGINT,
			PRIMARY KEY (run_id, ontology, term_id)
		)`,
		`CREATE TABLE IF NOT EXISTS associations (
			run_id BIGINT,
			region VARCHAR,
			gene_id VARCHAR,
			gene_name VARCHAR,
			chrom VARCHAR,
			tss BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
