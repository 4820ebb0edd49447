package render

import "errors"

// ErrUnknownDataset is returned when the state selects an id the registry does not hold.
var ErrUnknownDataset = errors.New("render: unknown dataset")
