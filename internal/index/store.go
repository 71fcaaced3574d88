package index

// Page is one indexed document. Terms preserves token order and duplicates
// (the location signal depends on positions, the content signal on counts);
// Outlinks is a deduplicated set of target page IDs. Authority starts at 1.0
// and is overwritten only by the Solver, once per full iteration.
type Page struct {
	ID        string
	Terms     []int
	Outlinks  map[string]struct{}
	Authority float64
}

// Store owns every Page built from a corpus. Pages are appended during a
// single ingestion pass and never removed; after the authority solve the
// store is read-only and safe for unlimited concurrent readers.
type Store struct {
	dict    *Dictionary
	pages   []*Page
	byID    map[string][]int
	termSum int
}

// NewStore creates an empty Store backed by the given dictionary.
func NewStore(dict *Dictionary) *Store {
	return &Store{
		dict: dict,
		byID: make(map[string][]int),
	}
}

// Add ingests one page: tokens are mapped through the dictionary in order
// (repeats preserved), links are deduplicated into the outlink set, and the
// page's authority starts at 1.0. Pages are never skipped or merged, and a
// duplicate page ID yields a second distinct entry.
func (s *Store) Add(id string, tokens []string, links []string) {
	terms := make([]int, len(tokens))
	for i, tok := range tokens {
		terms[i] = s.dict.IDFor(tok)
	}
	outlinks := make(map[string]struct{}, len(links))
	for _, l := range links {
		outlinks[l] = struct{}{}
	}
	s.byID[id] = append(s.byID[id], len(s.pages))
	s.pages = append(s.pages, &Page{
		ID:        id,
		Terms:     terms,
		Outlinks:  outlinks,
		Authority: 1.0,
	})
	s.termSum += len(terms)
}

// Pages returns the backing slice of pages. The slice position of a page is
// its stable index for the solver's score buffers.
func (s *Store) Pages() []*Page {
	return s.pages
}

// Indexes returns the positions of every page stored under id. Links to IDs
// absent from the store resolve to nothing.
func (s *Store) Indexes(id string) []int {
	return s.byID[id]
}

// Len returns the number of pages in the store.
func (s *Store) Len() int {
	return len(s.pages)
}

// TermCount returns the total number of term occurrences across all pages.
func (s *Store) TermCount() int {
	return s.termSum
}

// Dictionary returns the term dictionary shared by all pages.
func (s *Store) Dictionary() *Dictionary {
	return s.dict
}
