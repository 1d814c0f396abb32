package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/audit"
)

// handleAuditLog returns recent audit entries, newest first.
//
// Query parameters: limit, offset, action, severity, asset, since (YYYY-MM-DD).
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		s.fail(w, r, asset.ErrAuditDisabled)
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:   asset.AuditAction(q.Get("action")),
		Severity: asset.AuditSeverity(q.Get("severity")),
		AssetKey: q.Get("asset"),
		Limit:    parseIntParam(r, "limit", audit.DefaultListLimit),
		Offset:   parseNonNegativeParam(r, "offset", 0),
	}
	if since := q.Get("since"); since != "" {
		if t, err := time.Parse("2006-01-02", since); err == nil {
			filter.Since = t
		}
	}

	entries, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
