package hit

import (
	"encoding/json"
	"fmt"

	"github.com/Velocidex/ordereddict"

	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// Page is one paginated result-set snapshot supplied by the query layer.
// Page and PageSize are echoed to the rendering layer untouched.
type Page struct {
	Hits     []Hit
	Total    int
	Page     int
	PageSize int
}

// Query selects one page of hits from the query layer.
type Query struct {
	Page     int
	PageSize int
	Sort     sorting.Intent
}

// esEnvelope mirrors the Elasticsearch search response shape.
type esEnvelope struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// DecodeResponse decodes either an Elasticsearch search response or a bare
// JSON array of _source objects. Hits that are not JSON objects fail the decode;
// hits with a bad _original_source do not, they are dropped later by the normalizer.
func DecodeResponse(data []byte) (Page, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Page{}, fmt.Errorf("decode response: %w", err)
	}
	if len(probe) > 0 && probe[0] == '[' {
		return decodeArray(data)
	}

	var env esEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Page{}, fmt.Errorf("decode response: %w", err)
	}

	hits := make([]Hit, 0, len(env.Hits.Hits))
	for i, raw := range env.Hits.Hits {
		h, err := Parse(raw.Source)
		if err != nil {
			return Page{}, fmt.Errorf("hit %d: %w", i, err)
		}
		hits = append(hits, h)
	}

	total, err := parseTotal(env.Hits.Total)
	if err != nil {
		return Page{}, err
	}
	if total == 0 {
		total = len(hits)
	}
	return Page{Hits: hits, Total: total, Page: 1, PageSize: len(hits)}, nil
}

func decodeArray(data []byte) (Page, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return Page{}, fmt.Errorf("decode hits: %w", err)
	}
	hits := make([]Hit, 0, len(raws))
	for i, raw := range raws {
		h, err := Parse(raw)
		if err != nil {
			return Page{}, fmt.Errorf("hit %d: %w", i, err)
		}
		hits = append(hits, h)
	}
	return Page{Hits: hits, Total: len(hits), Page: 1, PageSize: len(hits)}, nil
}

// parseTotal accepts both `"total": 12` and `"total": {"value": 12}`.
func parseTotal(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var obj struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("decode total: %w", err)
	}
	return obj.Value, nil
}

// SourceDict is a convenience for building sidecar dictionaries in order.
func SourceDict(kv ...any) *ordereddict.Dict {
	d := ordereddict.NewDict()
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		d.Set(k, kv[i+1])
	}
	return d
}
