package db

// SearchQuery is the input for a paginated, optionally sorted FT.SEARCH.
type SearchQuery struct {
	IndexName string
	// Query is the RediSearch query string; empty means "*".
	Query        string
	SortBy       string // field alias; must be SORTABLE in the index
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
