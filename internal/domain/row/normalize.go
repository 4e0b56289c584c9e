package row

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Velocidex/ordereddict"

	"github.com/kailas-cloud/resultgrid/internal/domain"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
)

// Reporter receives diagnostics for rows dropped during normalization.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err error)

// Report calls f(err).
func (f ReporterFunc) Report(err error) { f(err) }

// ParseError describes a hit whose original source could not be merged.
type ParseError struct {
	Index int
	Self  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hit %d (%s): %s: %v", e.Index, e.Self, domain.ErrMalformedDocument, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{domain.ErrMalformedDocument, e.Err} }

// Normalize converts hits into records: the parsed original document is
// shallow-merged with the sidecar fields (sidecars win) and tagged with
// key = _self. A hit with invalid document text is dropped and reported;
// the remaining hits are still processed. reporter may be nil.
func Normalize(hits []hit.Hit, reporter Reporter) []Record {
	records := make([]Record, 0, len(hits))
	for i, h := range hits {
		rec, err := normalizeOne(h)
		if err != nil {
			if reporter != nil {
				reporter.Report(&ParseError{Index: i, Self: h.Self(), Err: err})
			}
			continue
		}
		records = append(records, rec)
	}
	return records
}

var (
	errNotObject   = errors.New("document is not a JSON object")
	errInvalidJSON = errors.New("document is not valid JSON")
)

func normalizeOne(h hit.Hit) (Record, error) {
	src := bytes.TrimSpace([]byte(h.OriginalSource()))
	if !json.Valid(src) {
		return Record{}, errInvalidJSON
	}
	if src[0] != '{' {
		return Record{}, errNotObject
	}
	doc := ordereddict.NewDict()
	if err := doc.UnmarshalJSON(src); err != nil {
		return Record{}, err
	}
	for _, item := range h.Sidecars().Items() {
		doc.Set(item.Key, item.Value)
	}
	return NewRecord(h.Self(), doc), nil
}
