package fl

import "errors"

var (
	ErrInvalidState             = errors.New("invalid training state")
	ErrInvalidStateTransition   = errors.New("invalid training state transition")
	ErrInvalidAggregationMethod = errors.New("invalid aggregation method")
)
