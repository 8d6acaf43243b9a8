package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrEmptyCatalog    = errors.New("catalog has no hotspots")
	ErrDuplicateID     = errors.New("duplicate hotspot id")
	ErrOutOfBounds     = errors.New("hotspot outside stage bounds")
	ErrLoadCatalog     = errors.New("load catalog failed")
	ErrDegenerateStage = errors.New("stage has zero size")
)
