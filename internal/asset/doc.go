// Package asset provides the inventory operations behind the HTTP API.
//
// The package holds all domain logic and is independent of the transport, so
// the web server, the operator CLI and tests drive the same [Service].
//
// # Records
//
// An asset is one [table.Row] of the spreadsheet managed by a [TableStore].
// Three identity fields locate records, tested in this precedence:
//
//   - Mc Serial No
//   - Host Name
//   - IP Address
//
// Lookups return the first row in table order whose identity field equals the
// query exactly. Delete removes every such row.
//
// # Writes
//
// Update, Add and Delete each reload the table, apply their change and save
// the whole table back. The load-mutate-save sequence runs under a single
// writer slot, so overlapping requests are applied one after the other
// instead of overwriting each other's result.
//
// Add rejects a record whose identity values collide with an existing row in
// the same field; Update does not re-check uniqueness.
//
// # Error Handling
//
// Domain failures are reported as [ErrNotFound], [*ConflictError] and
// [ErrInvalidRecord]. [MapError] turns any error into a [UserMessage] with a
// support code:
//
//   - AST001-AST003: asset lookups, conflicts and malformed records
//   - FILE001-FILE002: the table file is missing or unreadable
//   - REQ001-REQ002: the request was cancelled or timed out
//   - AUD001: the audit trail is not configured
//
// # Auditing
//
// Every successful mutation is handed to an [AuditRecorder]. Recording is best
// effort: a failure is logged and never undoes the mutation.
package asset
