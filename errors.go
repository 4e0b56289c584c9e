package resultgrid

import "github.com/kailas-cloud/resultgrid/internal/domain"

// Errors returned by Table, matched with errors.Is.
var (
	ErrMalformedDocument = domain.ErrMalformedDocument
	ErrInvalidDescriptor = domain.ErrInvalidDescriptor
	ErrRowNotFound       = domain.ErrRowNotFound
)
