package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// nopCloser wraps stdout so closing the output leaves it open.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// multiCloser closes the compressor before the file beneath it.
type multiCloser struct {
	io.Writer
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create opens path for writing. "-" or "" writes to stdout. A ".gz"
// suffix compresses with parallel gzip and ".zst" with zstd.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := pgzip.NewWriter(f)
		return &multiCloser{Writer: gz, closers: []io.Closer{gz, f}}, nil
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		return &multiCloser{Writer: zw, closers: []io.Closer{zw, f}}, nil
	}
	return f, nil
}
