// Package audit persists guardrail violation records.
//
// The scan engine produces violation data; persisting it is the
// caller's job, and this package is where the callers do it. Records
// are written asynchronously through a buffered recorder so scan paths
// never block on storage, stored in SQLite, and pruned on a cron
// schedule. Violation records carry only the masked representation of
// matched text; the raw sensitive substring is never stored.
package audit
