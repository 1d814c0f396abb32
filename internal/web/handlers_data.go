package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/assetrepo/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleSearch returns the first asset matching ?query=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	row, err := s.assets.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleHeaders returns the table's column names in order.
func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	headers, err := s.assets.Headers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, headers)
}

// handleExportPDF renders the first asset matching ?query= as a PDF attachment.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	row, err := s.assets.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Render fully before writing so a failure still gets an error response.
	var buf bytes.Buffer
	if err := s.exporter.WriteAssetPDF(&buf, row); err != nil {
		s.fail(w, r, err)
		return
	}

	name := s.exporter.FileName(row)
	logging.WithFields(r.Context(), "query", query).Debug("asset exported", "file", name, "bytes", buf.Len())

	attachment(w, "application/pdf", name)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleDownload streams the raw table file.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.assets.OpenTable(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer f.Close()

	attachment(w, xlsxContentType, s.cfg.Store.DownloadName)
	http.ServeContent(w, r, s.cfg.Store.DownloadName, info.ModTime(), f)
}
