package genes

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// UCSC public MySQL server defaults.
const (
	DefaultUCSCHost  = "genome-mysql.soe.ucsc.edu:3306"
	DefaultUCSCUser  = "genome"
	DefaultUCSCTable = "ncbiRefSeq"
)

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UCSCConfig selects a genePred-style table on a UCSC MySQL server.
type UCSCConfig struct {
	Genome       string // database name, e.g. "hg38"
	Table        string // genePred table, e.g. "ncbiRefSeq" or "knownGene"
	SymbolColumn string // optional column holding gene symbols, e.g. "name2"
	Host         string
	User         string
	Timeout      time.Duration
}

func (c UCSCConfig) withDefaults() UCSCConfig {
	if c.Table == "" {
		c.Table = DefaultUCSCTable
	}
	if c.Host == "" {
		c.Host = DefaultUCSCHost
	}
	if c.User == "" {
		c.User = DefaultUCSCUser
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// DSN returns the go-sql-driver/mysql data source name for the config.
func (c UCSCConfig) DSN() string {
	c = c.withDefaults()
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Net = "tcp"
	mc.Addr = c.Host
	mc.DBName = c.Genome
	mc.Timeout = c.Timeout
	mc.ReadTimeout = c.Timeout
	return mc.FormatDSN()
}

func (c UCSCConfig) validate() error {
	if !identRe.MatchString(c.Genome) {
		return fmt.Errorf("invalid UCSC genome %q", c.Genome)
	}
	if !identRe.MatchString(c.Table) {
		return fmt.Errorf("invalid UCSC table %q", c.Table)
	}
	if c.SymbolColumn != "" && !identRe.MatchString(c.SymbolColumn) {
		return fmt.Errorf("invalid UCSC symbol column %q", c.SymbolColumn)
	}
	return nil
}

// geneQuery builds the SELECT for a genePred table. Identifiers are
// validated beforehand since they cannot be bound as parameters.
func (c UCSCConfig) geneQuery() string {
	symbol := "name"
	if c.SymbolColumn != "" {
		symbol = c.SymbolColumn
	}
	return fmt.Sprintf("SELECT name, %s, chrom, strand, txStart, txEnd FROM %s", symbol, c.Table)
}

// UCSCImporter reads genes and chromosome sizes from a UCSC MySQL server.
type UCSCImporter struct {
	cfg    UCSCConfig
	logger *zap.Logger
}

// NewUCSCImporter creates an importer for the given table.
func NewUCSCImporter(cfg UCSCConfig) *UCSCImporter {
	return &UCSCImporter{cfg: cfg.withDefaults(), logger: zap.NewNop()}
}

// SetLogger sets the logger for import statistics.
func (u *UCSCImporter) SetLogger(logger *zap.Logger) {
	u.logger = logger
}

func (u *UCSCImporter) open(ctx context.Context) (*sql.DB, error) {
	if err := u.cfg.validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", u.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open UCSC database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s: %w", u.cfg.Host, err)
	}
	return db, nil
}

// Load adds every transcript of the table to the store, keyed by the
// table's name column. Transcripts sharing a name keep the first row.
func (u *UCSCImporter) Load(ctx context.Context, s *Store) error {
	db, err := u.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, u.cfg.geneQuery())
	if err != nil {
		return fmt.Errorf("query %s.%s: %w", u.cfg.Genome, u.cfg.Table, err)
	}
	defer rows.Close()

	stats, err := scanGeneRows(rows, s)
	if err != nil {
		return fmt.Errorf("read %s.%s: %w", u.cfg.Genome, u.cfg.Table, err)
	}
	u.logger.Info("imported UCSC genes",
		zap.String("genome", u.cfg.Genome),
		zap.String("table", u.cfg.Table),
		zap.Int("genes", stats.Loaded),
		zap.Int("duplicates", stats.Duplicates))

	return s.validate(u.cfg.Genome + "." + u.cfg.Table)
}

// ChromSizes reads the chromInfo table of the genome.
func (u *UCSCImporter) ChromSizes(ctx context.Context) (map[string]int, error) {
	db, err := u.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT chrom, size FROM chromInfo")
	if err != nil {
		return nil, fmt.Errorf("query %s.chromInfo: %w", u.cfg.Genome, err)
	}
	defer rows.Close()

	return scanChromSizeRows(rows)
}

// rowScanner is the subset of *sql.Rows used by the scanners.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanGeneRows(rows rowScanner, s *Store) (LoadStats, error) {
	var stats LoadStats
	var name, symbol, chrom, strandStr string
	var txStart, txEnd int

	for rows.Next() {
		if err := rows.Scan(&name, &symbol, &chrom, &strandStr, &txStart, &txEnd); err != nil {
			return stats, err
		}
		if name == "" || txEnd <= txStart {
			stats.Skipped++
			continue
		}
		if symbol == "" {
			symbol = name
		}
		strand := parseStrand(strandStr)

		// genePred coordinates are already 0-based half-open
		g := &Gene{
			ID:     name,
			Name:   symbol,
			Chrom:  chrom,
			TSS:    tssFromFeature(txStart, txEnd, strand),
			Strand: strand,
		}
		if s.Add(g) {
			stats.Loaded++
		} else {
			stats.Duplicates++
		}
	}
	return stats, rows.Err()
}

func scanChromSizeRows(rows rowScanner) (map[string]int, error) {
	sizes := make(map[string]int)
	var chrom string
	var size int
	for rows.Next() {
		if err := rows.Scan(&chrom, &size); err != nil {
			return nil, err
		}
		sizes[chrom] = size
	}
	return sizes, rows.Err()
}
