package web

import (
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/assetrepo/internal/web/templates"
)

// handleIndex renders the asset search page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := templates.IndexParams{
		Title:        "Asset Repository",
		DownloadName: s.cfg.Store.DownloadName,
		AuditEnabled: s.audit != nil,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		slog.Error("render index", "error", err)
	}
}
