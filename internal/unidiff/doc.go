// Package unidiff parses unified diff text (as emitted by git and other
// version-control tools) into a structured, queryable form: the ordered set
// of changed files plus per-file added lines, removed lines, and hunks.
//
// Parsing is deliberately permissive. Diffs arrive from heterogeneous tools
// and truncated fragments are common, so malformed input never produces an
// error: missing structure degrades to empty or partial results. The parser
// is a pure function of its input and is safe to call concurrently.
package unidiff
