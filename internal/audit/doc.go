// Package audit records gitenc operations in a local, uncommitted log.
//
// The log is stored as JSON Lines at .git/gitenc/audit.jsonl. Each entry has
// a UTC timestamp, a run ID (one UUID per command invocation), the local OS
// user, the operation and operation specific details. Keys are only ever
// referenced by fingerprint.
//
// # Usage
//
//	entry := audit.NewEntry("encrypt")
//	entry.Files = written
//	audit.Log(settings.AuditPath, entry)
//
// # Failure Handling
//
// Audit logging is best-effort. If writing fails the operation continues.
package audit
