// Package audit appends a JSON Lines record of every analysis run to the
// project's .protoscope/audit.jsonl.
//
// Logging is best-effort: a failed append never fails the analysis, and
// outside an initialized project nothing is written at all.
package audit
