package genesets

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gogreat/internal/fileio"
)

// GO collection names.
const (
	GOBiologicalProcess = "GO Biological Process"
	GOMolecularFunction = "GO Molecular Function"
	GOCellularComponent = "GO Cellular Component"
)

var aspectCollection = map[string]string{
	"P": GOBiologicalProcess,
	"F": GOMolecularFunction,
	"C": GOCellularComponent,
}

var namespaceCollection = map[string]string{
	"biological_process": GOBiologicalProcess,
	"molecular_function": GOMolecularFunction,
	"cellular_component": GOCellularComponent,
}

// oboTerm is the name and namespace of one ontology term.
type oboTerm struct {
	name      string
	namespace string
}

// GOLoader builds GO collections from a GAF annotation file and an
// optional OBO ontology supplying term names.
type GOLoader struct {
	gafPath string
	oboPath string
	logger  *zap.Logger
}

// NewGOLoader creates a loader. oboPath may be empty.
func NewGOLoader(gafPath, oboPath string) *GOLoader {
	return &GOLoader{gafPath: gafPath, oboPath: oboPath, logger: zap.NewNop()}
}

// SetLogger sets the logger for load statistics.
func (l *GOLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load returns the Biological Process, Molecular Function and Cellular
// Component collections, in that order.
func (l *GOLoader) Load() ([]*Collection, error) {
	terms := map[string]oboTerm{}
	if l.oboPath != "" {
		r, err := fileio.Open(l.oboPath)
		if err != nil {
			return nil, fmt.Errorf("open OBO file: %w", err)
		}
		terms, err = parseOBO(r)
		r.Close()
		if err != nil {
			return nil, err
		}
	}

	r, err := fileio.Open(l.gafPath)
	if err != nil {
		return nil, fmt.Errorf("open GAF file: %w", err)
	}
	defer r.Close()

	colls, err := parseGAF(r, terms)
	if err != nil {
		return nil, err
	}
	for _, c := range colls {
		l.logger.Info("loaded GO collection",
			zap.String("collection", c.Name),
			zap.Int("terms", c.Len()),
			zap.Int("genes", len(c.AllGenes())))
	}
	return colls, nil
}

// LoadGAF is a convenience wrapper around GOLoader.
func LoadGAF(gafPath, oboPath string) ([]*Collection, error) {
	return NewGOLoader(gafPath, oboPath).Load()
}

// parseGAF reads GAF 2.x rows. Column 3 is the gene symbol, column 5 the
// GO ID and column 9 the aspect. Annotations qualified with NOT are
// skipped.
func parseGAF(r io.Reader, terms map[string]oboTerm) ([]*Collection, error) {
	colls := map[string]*Collection{
		GOBiologicalProcess: NewCollection(GOBiologicalProcess),
		GOMolecularFunction: NewCollection(GOMolecularFunction),
		GOCellularComponent: NewCollection(GOCellularComponent),
	}

	scanner := fileio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "!") {
			continue
		}
		fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		if len(fields) < 5 {
			continue
		}
		symbol, goID := fields[2], fields[4]
		if symbol == "" || goID == "" {
			continue
		}
		if strings.Contains(fields[3], "NOT") {
			continue
		}

		var aspect string
		if len(fields) > 8 {
			aspect = fields[8]
		}
		name, ok := aspectCollection[aspect]
		if !ok {
			if name, ok = namespaceCollection[terms[goID].namespace]; !ok {
				continue
			}
		}

		c := colls[name]
		gs, ok := c.Get(goID)
		if !ok {
			termName := terms[goID].name
			if termName == "" {
				termName = goID
			}
			gs = NewGeneSet(goID, termName)
			c.Set(gs)
		}
		gs.Add(symbol)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GAF: %w", err)
	}

	return []*Collection{
		colls[GOBiologicalProcess],
		colls[GOMolecularFunction],
		colls[GOCellularComponent],
	}, nil
}

// parseOBO extracts id, name and namespace of every GO [Term] stanza.
func parseOBO(r io.Reader) (map[string]oboTerm, error) {
	terms := make(map[string]oboTerm)
	var id string
	var cur oboTerm
	inTerm := false

	flush := func() {
		if inTerm && id != "" {
			terms[id] = cur
		}
		id, cur = "", oboTerm{}
	}

	scanner := fileio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "["):
			flush()
			inTerm = line == "[Term]"
		case !inTerm:
		case strings.HasPrefix(line, "id: GO:"):
			id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "name: "):
			cur.name = strings.TrimPrefix(line, "name: ")
		case strings.HasPrefix(line, "namespace: "):
			cur.namespace = strings.TrimPrefix(line, "namespace: ")
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan OBO: %w", err)
	}
	return terms, nil
}
