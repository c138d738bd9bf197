package output

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/gogreat/internal/genes"
)

// WriteGeneBED writes each gene's TSS as a one-base BED6 interval, the
// format read back by genes.LoadBED. With bySymbol the name column holds
// the gene symbol instead of the gene ID.
func WriteGeneBED(w io.Writer, gs []*genes.Gene, bySymbol bool) error {
	bw := bufio.NewWriter(w)
	for _, g := range gs {
		name := g.ID
		if bySymbol && g.Name != "" {
			name = g.Name
		}
		strand := "+"
		if g.IsReverseStrand() {
			strand = "-"
		}
		line := strings.Join([]string{
			g.Chrom,
			strconv.Itoa(g.TSS),
			strconv.Itoa(g.TSS + 1),
			name,
			"0",
			strand,
		}, "\t")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteChromSizes writes chrom<TAB>size lines sorted by chromosome name.
func WriteChromSizes(w io.Writer, sizes map[string]int) error {
	chroms := make([]string, 0, len(sizes))
	for c := range sizes {
		chroms = append(chroms, c)
	}
	sort.Strings(chroms)

	bw := bufio.NewWriter(w)
	for _, c := range chroms {
		if _, err := bw.WriteString(c + "\t" + strconv.Itoa(sizes[c]) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
