package asset

import (
	"context"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/table"
)

// AuditAction represents the type of mutation being audited.
type AuditAction string

const (
	ActionAdd    AuditAction = "asset_add"
	ActionUpdate AuditAction = "asset_update"
	ActionDelete AuditAction = "asset_delete"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// SeverityFor returns the severity recorded for an action.
func SeverityFor(action AuditAction) AuditSeverity {
	switch action {
	case ActionDelete:
		return SeverityHigh
	case ActionAdd, ActionUpdate:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AuditEvent describes one successful mutation.
type AuditEvent struct {
	Action       AuditAction
	Query        string            // lookup value for update and delete
	AssetKey     string            // Host Name, else Mc Serial No, else IP Address
	RowData      map[string]string // the added row, or the row before update/delete
	OldValues    map[string]string // update only: previous values of changed fields
	NewValues    map[string]string // update only: new values of changed fields
	RowsAffected int
	IPAddress    string
	UserAgent    string
	OccurredAt   time.Time
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, AuditEvent) error { return nil }

// assetKey picks the most readable identity value of row.
func assetKey(row table.Row) string {
	for _, f := range []Field{FieldHostName, FieldSerialNo, FieldIPAddress} {
		if v := row.Get(string(f)); v != "" {
			return v
		}
	}
	return ""
}

// diff returns the previous and new values of every key whose value changed.
func diff(before, after table.Row) (old, updated map[string]string) {
	old = make(map[string]string)
	updated = make(map[string]string)
	after.Each(func(k, v string) {
		prev, ok := before.Lookup(k)
		if ok && prev == v {
			return
		}
		old[k] = prev
		updated[k] = v
	})
	return old, updated
}
