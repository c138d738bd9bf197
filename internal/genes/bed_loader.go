package genes

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/fileio"
)

// BEDLoader loads genes from a BED6 file (chrom, start, end, name, score,
// strand). The name column serves as both gene ID and symbol and a missing
// strand column means the forward strand.
type BEDLoader struct {
	path   string
	logger *zap.Logger
}

// NewBEDLoader creates a new BED gene loader.
func NewBEDLoader(path string) *BEDLoader {
	return &BEDLoader{path: path, logger: zap.NewNop()}
}

// SetLogger sets the logger for load statistics.
func (l *BEDLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load adds every gene in the file to the store. It fails with
// ErrInvalidAnnotation if the store holds no genes afterwards.
func (l *BEDLoader) Load(s *Store) error {
	r, err := fileio.Open(l.path)
	if err != nil {
		return fmt.Errorf("open BED file: %w", err)
	}
	defer r.Close()

	stats, err := parseBED(r, s)
	if err != nil {
		return err
	}
	l.logger.Info("loaded gene model",
		zap.String("path", l.path),
		zap.Int("genes", stats.Loaded),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("skipped", stats.Skipped))

	return s.validate(l.path)
}

func parseBED(reader io.Reader, s *Store) (LoadStats, error) {
	var stats LoadStats
	scanner := fileio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			stats.Skipped++
			continue
		}

		start, err1 := strconv.Atoi(fields[1])
		end, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || start < 0 || end <= start || fields[3] == "" {
			stats.Skipped++
			continue
		}

		strand := int8(1)
		if len(fields) > 5 {
			strand = parseStrand(fields[5])
		}

		g := &Gene{
			ID:     fields[3],
			Name:   fields[3],
			Chrom:  fields[0],
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
		return stats, fmt.Errorf("scan BED: %w", err)
	}
	return stats, nil
}
