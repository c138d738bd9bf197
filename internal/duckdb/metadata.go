package duckdb

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file, keyed by its
// absolute path. An empty path yields the zero fingerprint, for optional
// inputs such as chrom sizes.
func StatFile(path string) (FileFingerprint, error) {
	if path == "" {
		return FileFingerprint{}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// metaEntries renders the fingerprint as key/value pairs under prefix.
func (f FileFingerprint) metaEntries(prefix string) [][2]string {
	return [][2]string{
		{prefix + "_path", f.Path},
		{prefix + "_size", strconv.FormatInt(f.Size, 10)},
		{prefix + "_modtime", f.ModTime.UTC().Format(time.RFC3339Nano)},
	}
}
