package regions

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/fileio"
)

// ReadOptions controls BED parsing.
type ReadOptions struct {
	// MaxRegions bounds the set size; zero selects DefaultMaxRegions.
	MaxRegions int
	// OneBased converts 1-based start coordinates to 0-based.
	OneBased bool
}

// Load reads and validates regions from a BED file, which may be gzip or
// bzip2 compressed. A path of "-" reads stdin.
func Load(path string, opts ReadOptions) (Set, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Parse(r, opts)
}

// Parse reads and validates regions in BED format from r. Columns are
// chrom, start, end and optionally name, score and strand. Blank lines,
// comments and track/browser lines are skipped.
func Parse(r io.Reader, opts ReadOptions) (Set, error) {
	scanner := fileio.NewScanner(r)

	var set Set
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			fields = strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
		}

		region, err := parseFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid BED format at line %d: %q: %v", ErrInvalidRegions, lineNum, line, err)
		}
		if opts.OneBased {
			region.Start--
		}
		set = append(set, region)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan BED: %w", err)
	}

	if err := set.Validate(opts.MaxRegions); err != nil {
		return nil, err
	}
	return set, nil
}

func parseFields(fields []string) (Region, error) {
	start, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Region{}, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return Region{}, fmt.Errorf("parse end: %w", err)
	}

	r := Region{Chrom: fields[0], Start: start, End: end}
	if len(fields) > 3 && fields[3] != "." {
		r.Name = fields[3]
	}
	if len(fields) > 4 && fields[4] != "." && fields[4] != "" {
		score, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return Region{}, fmt.Errorf("parse score: %w", err)
		}
		r.Score = &score
	}
	if len(fields) > 5 && (fields[5] == "+" || fields[5] == "-") {
		r.Strand = fields[5]
	}
	return r, nil
}

// Line formats a region as a BED line without the trailing newline.
// Optional columns are emitted only as far as the last present one.
func (r Region) Line() string {
	fields := []string{r.Chrom, strconv.Itoa(r.Start), strconv.Itoa(r.End)}

	name := r.Name
	if name == "" {
		name = "."
	}
	score := "."
	if r.Score != nil {
		score = strconv.FormatFloat(*r.Score, 'g', -1, 64)
	}

	switch {
	case r.Strand != "":
		fields = append(fields, name, score, r.Strand)
	case r.Score != nil:
		fields = append(fields, name, score)
	case r.Name != "":
		fields = append(fields, name)
	}
	return strings.Join(fields, "\t")
}

// Write writes the set in BED format.
func (s Set) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range s {
		if _, err := bw.WriteString(r.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
