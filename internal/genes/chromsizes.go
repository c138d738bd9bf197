package genes

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/fileio"
)

// LoadChromSizes reads a chrom<TAB>size table such as UCSC's *.chrom.sizes.
func LoadChromSizes(path string) (map[string]int, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chromosome sizes: %w", err)
	}
	defer r.Close()

	return parseChromSizes(r)
}

func parseChromSizes(reader io.Reader) (map[string]int, error) {
	sizes := make(map[string]int)
	scanner := fileio.NewScanner(reader)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		size, err := strconv.Atoi(fields[1])
		if err != nil || size < 0 {
			return nil, fmt.Errorf("chromosome sizes line %d: invalid size %q", lineNum, fields[1])
		}
		sizes[fields[0]] = size
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan chromosome sizes: %w", err)
	}
	return sizes, nil
}
