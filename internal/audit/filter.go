package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/asset"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Filter narrows an audit log query. Zero fields are ignored.
type Filter struct {
	Action   asset.AuditAction
	Severity asset.AuditSeverity
	AssetKey string
	Since    time.Time
	Limit    int
	Offset   int
}

// where builds the WHERE clause and its positional arguments.
func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, column+" $"+strconv.Itoa(len(args)))
	}

	if f.Action != "" {
		add("action =", string(f.Action))
	}
	if f.Severity != "" {
		add("severity =", string(f.Severity))
	}
	if f.AssetKey != "" {
		add("asset_key =", f.AssetKey)
	}
	if !f.Since.IsZero() {
		add("created_at >=", f.Since)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// page returns the clamped limit and offset.
func (f Filter) page() (limit, offset int) {
	limit = f.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
