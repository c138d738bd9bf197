package genes

import "go.uber.org/zap"

// LoadGTF builds a store from a GTF/GFF file.
func LoadGTF(path string, opts LoadOptions, logger *zap.Logger) (*Store, error) {
	s := NewStore()
	l := NewGTFLoader(path, opts)
	if logger != nil {
		l.SetLogger(logger)
	}
	if err := l.Load(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadBED builds a store from a BED6 gene file.
func LoadBED(path string, logger *zap.Logger) (*Store, error) {
	s := NewStore()
	l := NewBEDLoader(path)
	if logger != nil {
		l.SetLogger(logger)
	}
	if err := l.Load(s); err != nil {
		return nil, err
	}
	return s, nil
}
