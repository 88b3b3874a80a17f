package navigation

import "errors"

var (
	ErrUnknownMetric   = errors.New("unknown distance metric")
	ErrOutOfBounds     = errors.New("cell out of grid bounds")
	ErrInvalidUnitSize = errors.New("unit size must be at least 1")
)
