package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/gogreat/internal/genes"
)

// DomainCache manages gob-serialized, domain-computed gene annotations on
// disk:
//
//	{dir}/domains.gob       (serialized store snapshot)
//	{dir}/domains.gob.meta  (source fingerprints and domain parameters)
type DomainCache struct {
	dir string
}

// NewDomainCache creates a domain cache for the given directory.
func NewDomainCache(dir string) *DomainCache {
	return &DomainCache{dir: dir}
}

func (dc *DomainCache) gobPath() string {
	return filepath.Join(dc.dir, "domains.gob")
}

func (dc *DomainCache) metaPath() string {
	return filepath.Join(dc.dir, "domains.gob.meta")
}

// DomainSource identifies the inputs a cached store was built from.
type DomainSource struct {
	Annotation FileFingerprint
	ChromSizes FileFingerprint
	Format     string            // "gtf" or "bed"
	Options    genes.LoadOptions // GTF row selection, unused for BED
}

func metaChecks(src DomainSource, p genes.DomainParams) [][2]string {
	checks := src.Annotation.metaEntries("annotation")
	checks = append(checks, src.ChromSizes.metaEntries("chromsizes")...)
	return append(checks,
		[2]string{"format", src.Format},
		[2]string{"feature_type", src.Options.FeatureType},
		[2]string{"gene_id_attr", src.Options.IDAttr},
		[2]string{"gene_name_attr", src.Options.NameAttr},
		[2]string{"strip_version", strconv.FormatBool(src.Options.StripVersion)},
		[2]string{"rule", string(p.Rule)},
		[2]string{"upstream", strconv.Itoa(p.Upstream)},
		[2]string{"downstream", strconv.Itoa(p.Downstream)},
		[2]string{"max_extension", strconv.Itoa(p.MaxExtension)},
	)
}

// Valid checks whether the cached store was built from the same source
// files, loader settings and domain parameters.
func (dc *DomainCache) Valid(src DomainSource, p genes.DomainParams) bool {
	meta, err := dc.readMeta()
	if err != nil {
		return false
	}
	for _, c := range metaChecks(src, p) {
		if meta[c[0]] != c[1] {
			return false
		}
	}
	if _, err := os.Stat(dc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads the cached store from disk.
func (dc *DomainCache) Load() (*genes.Store, error) {
	f, err := os.Open(dc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open domain cache: %w", err)
	}
	defer f.Close()

	var snap genes.Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode domain cache: %w", err)
	}
	return genes.FromSnapshot(snap), nil
}

// Write serializes a domain-computed store to disk.
func (dc *DomainCache) Write(s *genes.Store, src DomainSource) error {
	if err := s.RequireDomains(); err != nil {
		return err
	}
	if err := os.MkdirAll(dc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(dc.gobPath())
	if err != nil {
		return fmt.Errorf("create domain cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(s.Snapshot()); err != nil {
		f.Close()
		os.Remove(dc.gobPath())
		return fmt.Errorf("encode domain cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close domain cache: %w", err)
	}

	return dc.writeMeta(src, s.Params())
}

// Clear removes the cached files.
func (dc *DomainCache) Clear() {
	os.Remove(dc.gobPath())
	os.Remove(dc.metaPath())
}

func (dc *DomainCache) writeMeta(src DomainSource, p genes.DomainParams) error {
	var lines []string
	for _, c := range metaChecks(src, p) {
		lines = append(lines, c[0]+"="+c[1])
	}
	lines = append(lines, "created_at="+time.Now().UTC().Format(time.RFC3339), "")
	return os.WriteFile(dc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (dc *DomainCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(dc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
