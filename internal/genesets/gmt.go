package genesets

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/inodb/gogreat/internal/fileio"
)

// LoadGMT reads a GMT file: term_id<TAB>description<TAB>gene... per line.
// An empty name defaults to the file name without extensions.
func LoadGMT(path, name string) (*Collection, error) {
	if name == "" {
		name = collectionName(path)
	}

	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open GMT file: %w", err)
	}
	defer r.Close()

	c, err := ParseGMT(r, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// ParseGMT reads GMT content. Lines with fewer than three fields are
// skipped. A term's name is its description, or its ID when the
// description is empty. A repeated term ID replaces the earlier line.
func ParseGMT(r io.Reader, name string) (*Collection, error) {
	c := NewCollection(name)
	scanner := fileio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		if len(fields) < 3 {
			continue
		}

		gs := NewGeneSet(fields[0], fields[1])
		gs.Description = fields[1]
		if gs.Name == "" {
			gs.Name = gs.ID
		}
		for _, gene := range fields[2:] {
			if gene = strings.TrimSpace(gene); gene != "" {
				gs.Add(gene)
			}
		}
		c.Set(gs)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GMT: %w", err)
	}
	return c, nil
}

// WriteGMT writes the collection in GMT format with genes sorted.
func (c *Collection) WriteGMT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, gs := range c.Sets() {
		fields := append([]string{gs.ID, gs.Description}, gs.SortedGenes()...)
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// collectionName strips directories and compression/format extensions.
func collectionName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".gz", ".bz2", ".gmt", ".txt"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
