// Package query provides preprocessing and expansion of user questions
// before retrieval.
//
// The Processor normalizes raw text, expands it with domain synonym
// substitutions, extracts keywords for full-text fallback and reranking,
// and flags queries that describe an emergency. All of its tables are
// immutable configuration injected at construction, so tests can substitute
// fixed tables.
package query
