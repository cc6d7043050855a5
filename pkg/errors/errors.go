package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrEntityExists = errors.New("entity already exists")
	ErrUnauthorized = errors.New("missing or invalid credentials")
	ErrNoData       = errors.New("no data points to render")
	ErrBackend      = errors.New("backend request failed")
)
