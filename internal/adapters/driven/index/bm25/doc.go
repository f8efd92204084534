// Package bm25 provides an in-memory keyword index implementing
// driven.Index.
//
// The index is a set of per-document posting tables published as an
// immutable snapshot behind an atomic pointer. Searches load the current
// snapshot and never block; writers serialise on a mutex, build a new
// snapshot sharing every untouched document, and swap it in. A search
// therefore observes each document either entirely before or entirely after
// a concurrent write.
//
// Ranking uses Okapi BM25 with corpus statistics taken from the whole index,
// mapped into [0, 1) as s/(s+1) so a relevance threshold can be applied.
package bm25
