package bm25

import (
	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
)

// entry is one indexed chunk.
type entry struct {
	chunk  domain.Chunk
	tf     map[string]int
	length int
}

func newEntry(chunk domain.Chunk) *entry {
	tf, n := termFrequencies(chunk.Content)
	return &entry{chunk: chunk, tf: tf, length: n}
}

// docIndex holds every entry of one document. It is immutable once
// published in a snapshot.
type docIndex struct {
	id         string
	name       string
	generation int64
	entries    map[string]*entry
	df         map[string]int
	totalLen   int
}

func buildDocIndex(id, name string, generation int64, entries map[string]*entry) *docIndex {
	d := &docIndex{
		id:         id,
		name:       name,
		generation: generation,
		entries:    entries,
		df:         make(map[string]int),
	}
	for _, e := range entries {
		d.totalLen += e.length
		for term := range e.tf {
			d.df[term]++
		}
	}
	return d
}

// withEntry returns a copy of d with e added or replaced.
func (d *docIndex) withEntry(e *entry) *docIndex {
	entries := make(map[string]*entry, len(d.entries)+1)
	for id, old := range d.entries {
		entries[id] = old
	}
	entries[e.chunk.ID] = e

	gen := d.generation
	if e.chunk.Generation > gen {
		gen = e.chunk.Generation
	}
	return buildDocIndex(d.id, d.name, gen, entries)
}

// snapshot is an immutable view of the whole index.
type snapshot struct {
	docs     map[string]*docIndex
	chunks   int
	totalLen int
}

var emptySnapshot = &snapshot{docs: map[string]*docIndex{}}

// with returns a new snapshot with doc replaced, or removed when doc is nil.
func (s *snapshot) with(id string, doc *docIndex) *snapshot {
	next := &snapshot{docs: make(map[string]*docIndex, len(s.docs)+1)}
	for k, v := range s.docs {
		if k != id {
			next.docs[k] = v
		}
	}
	if doc != nil {
		next.docs[id] = doc
	}
	for _, d := range next.docs {
		next.chunks += len(d.entries)
		next.totalLen += d.totalLen
	}
	return next
}

// docFreq returns the number of chunks in the index containing term.
func (s *snapshot) docFreq(term string) int {
	n := 0
	for _, d := range s.docs {
		n += d.df[term]
	}
	return n
}

func (s *snapshot) avgLen() float64 {
	if s.chunks == 0 {
		return 0
	}
	return float64(s.totalLen) / float64(s.chunks)
}

func (s *snapshot) terms() int {
	seen := make(map[string]struct{})
	for _, d := range s.docs {
		for term := range d.df {
			seen[term] = struct{}{}
		}
	}
	return len(seen)
}
