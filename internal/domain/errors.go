package domain

import (
	"errors"
)

var (
	// ErrMalformedDocument signals a hit whose original source is not a JSON object.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvalidDescriptor signals an invalid field descriptor.
	ErrInvalidDescriptor = errors.New("invalid field descriptor")
	// ErrRowNotFound signals a row key absent from the current result set.
	ErrRowNotFound = errors.New("row not found")
	// ErrSessionNotFound signals a missing or expired table session.
	ErrSessionNotFound = errors.New("table session not found")
	// ErrDashboardNotFound signals an unknown dashboard name.
	ErrDashboardNotFound = errors.New("dashboard not found")
	// ErrQueryUnavailable signals that the query layer is not accepting requests.
	ErrQueryUnavailable = errors.New("query layer unavailable")
	// ErrInvalidSelfReference signals a self reference that cannot be split into org and project.
	ErrInvalidSelfReference = errors.New("invalid self reference")
)
