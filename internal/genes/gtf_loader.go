package genes

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/fileio"
)

// LoadOptions controls which gene-model rows become genes.
type LoadOptions struct {
	FeatureType  string // GTF feature type to keep (default "gene")
	IDAttr       string // attribute holding the gene ID (default "gene_id")
	NameAttr     string // attribute holding the gene symbol (default "gene_name")
	StripVersion bool   // drop Ensembl version suffixes from gene IDs
}

// DefaultLoadOptions returns options matching GENCODE/Ensembl GTF files.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		FeatureType: "gene",
		IDAttr:      "gene_id",
		NameAttr:    "gene_name",
	}
}

func (o LoadOptions) withDefaults() LoadOptions {
	d := DefaultLoadOptions()
	if o.FeatureType == "" {
		o.FeatureType = d.FeatureType
	}
	if o.IDAttr == "" {
		o.IDAttr = d.IDAttr
	}
	if o.NameAttr == "" {
		o.NameAttr = d.NameAttr
	}
	return o
}

// LoadStats counts the rows seen by a loader.
type LoadStats struct {
	Loaded     int // genes added to the store
	Duplicates int // rows whose gene ID was already present
	Skipped    int // malformed rows or rows without a gene ID
}

// GTFLoader loads gene TSS positions from GTF or GFF3 files.
type GTFLoader struct {
	path   string
	opts   LoadOptions
	logger *zap.Logger
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string, opts LoadOptions) *GTFLoader {
	return &GTFLoader{
		path:   path,
		opts:   opts.withDefaults(),
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for load statistics.
func (l *GTFLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load adds every gene in the file to the store. It fails with
// ErrInvalidAnnotation if the store holds no genes afterwards.
func (l *GTFLoader) Load(s *Store) error {
	r, err := fileio.Open(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer r.Close()

	stats, err := l.parseGTF(r, s)
	if err != nil {
		return err
	}
	l.logger.Info("loaded gene model",
		zap.String("path", l.path),
		zap.String("feature_type", l.opts.FeatureType),
		zap.Int("genes", stats.Loaded),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("skipped", stats.Skipped))

	return s.validate(l.path)
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int // 1-based, inclusive
	end         int // 1-based, inclusive
	strand      string
	attributes  map[string]string
}

// parseGTF parses GTF content into the store. Malformed rows are skipped.
func (l *GTFLoader) parseGTF(reader io.Reader, s *Store) (LoadStats, error) {
	var stats LoadStats
	scanner := fileio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			stats.Skipped++
			continue
		}
		if feat.featureType != l.opts.FeatureType {
			continue
		}

		id := feat.attributes[l.opts.IDAttr]
		if id == "" {
			stats.Skipped++
			continue
		}
		if l.opts.StripVersion {
			id = stripVersion(id)
		}
		name := feat.attributes[l.opts.NameAttr]
		if name == "" {
			name = id
		}

		// Convert to 0-based half-open
		start := feat.start - 1
		end := feat.end
		strand := parseStrand(feat.strand)

		g := &Gene{
			ID:     id,
			Name:   name,
			Chrom:  feat.chrom,
			TSS:    tssFromFeature(start, end, strand),
			Strand: strand,
		}
		if s.Add(g) {
			stats.Loaded++
		} else {
			stats.Duplicates++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan GTF: %w", err)
	}
	return stats, nil
}

// parseLine parses a single GTF line.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}
	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid coordinates %d-%d", start, end)
	}

	return &gtfFeature{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the attribute column of GTF (key "value") and
// GFF3 (key=value) rows.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var key, value string
		if k, v, ok := strings.Cut(part, "="); ok {
			key, value = k, v
		} else if k, v, ok := strings.Cut(part, " "); ok {
			key, value = k, v
		} else {
			continue
		}

		attrs[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return attrs
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENSG00000133703.14" -> "ENSG00000133703"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
