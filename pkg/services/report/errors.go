package report

import "errors"

var (
	ErrUnknownKind      = errors.New("unknown report kind")
	ErrUnknownGroup     = errors.New("unknown section group")
	ErrModeNotSupported = errors.New("view mode not supported by this report")
	ErrUnavailable      = errors.New("report unavailable")
	ErrTableNotFound    = errors.New("table not found")
)
