package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidDocument     = errors.New("invalid document")
	ErrRendererUnavailable = errors.New("image renderer unavailable")
	ErrExportFailed        = errors.New("image export failed")
)
