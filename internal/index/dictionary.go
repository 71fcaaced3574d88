// Package index holds the in-memory search index: the term dictionary, the
// page store built from a loaded corpus, and the link-graph authority solver.
package index

import "sync"

// Dictionary is a bidirectional mapping between term strings and dense
// integer term IDs. IDs are assigned sequentially in first-seen order and
// are never removed or renumbered; the same string always maps to the same
// ID for the lifetime of the dictionary.
//
// Lookups during query serving intentionally register unseen terms (see
// IDFor), so the dictionary stays guarded after ingestion completes.
type Dictionary struct {
	mu    sync.RWMutex
	ids   map[string]int
	terms []string
}

// NewDictionary returns an empty Dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		ids: make(map[string]int),
	}
}

// IDFor returns the ID for term, allocating the next sequential ID if the
// term has not been seen before. Registering on lookup is deliberate: query
// terms unknown to the corpus receive a fresh ID that matches no page, which
// keeps every lookup total.
func (d *Dictionary) IDFor(term string) int {
	d.mu.RLock()
	id, ok := d.ids[term]
	d.mu.RUnlock()
	if ok {
		return id
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	// another writer may have registered the term between the two locks
	if id, ok := d.ids[term]; ok {
		return id
	}
	id = len(d.terms)
	d.ids[term] = id
	d.terms = append(d.terms, term)
	return id
}

// Term returns the string for a previously assigned ID.
func (d *Dictionary) Term(id int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id < 0 || id >= len(d.terms) {
		return "", false
	}
	return d.terms[id], true
}

// Len returns the number of distinct terms seen so far.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.terms)
}
