// Package corpus loads crawled pages from durable storage. A corpus is a
// set of pages, each persisted as one text blob and one outgoing-link list;
// the filesystem backend mirrors the datasets/<name>/Words + Links layout
// written by the crawler, and the Postgres backend reads the pages table.
package corpus

import "context"

// Document is one decoded corpus page: its decoded title (the page
// identifier), the ordered lowercase token sequence of its body, and its
// decoded outgoing link targets.
type Document struct {
	Title string   `json:"title"`
	Words []string `json:"words"`
	Links []string `json:"links"`
}

// Source loads a complete corpus. Implementations return documents sorted
// by title so term-ID assignment is reproducible across runs; rankings do
// not depend on the numbering, but tests and diagnostics do.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}
