package db

import "errors"

var (
	// ErrIndexNotFound is returned by Search when the index is missing.
	ErrIndexNotFound = errors.New("db: index not found")
	// ErrIndexExists is returned by CreateIndex when the index is already there.
	ErrIndexExists = errors.New("db: index already exists")
	// ErrInvalidIndex wraps IndexDefinition validation failures.
	ErrInvalidIndex = errors.New("db: invalid index definition")
)

// Command names carried in Error.Op.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpJSONSet     = "JSON.SET"
)

// Error is a server or transport failure of one command.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "db: " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
