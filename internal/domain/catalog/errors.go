package catalog

import "errors"

// Sentinel error kinds for this package.
var (
	ErrLoadCatalog    = errors.New("load catalog failed")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrInconsistent   = errors.New("authored statistics disagree with bins")
)
