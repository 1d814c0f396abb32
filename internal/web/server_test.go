package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/audit"
	"github.com/JonMunkholm/assetrepo/internal/config"
	"github.com/JonMunkholm/assetrepo/internal/export"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	srv   *Server
	store *table.Store
	audit *recorder
}

// recorder is an in-memory audit recorder and log.
type recorder struct {
	mu      sync.Mutex
	events  []asset.AuditEvent
	filters []audit.Filter
	listErr error
}

func (r *recorder) Record(ctx context.Context, e asset.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, f)
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []audit.Entry
	for _, e := range r.events {
		out = append(out, audit.Entry{Action: e.Action, AssetKey: e.AssetKey, Severity: asset.SeverityFor(e.Action)})
	}
	return out, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) string { return "" })
	require.NoError(t, err)
	cfg.Rate.Enabled = false
	return cfg
}

func newFixture(t *testing.T, mutate func(*config.Config), opts ...Option) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Asset Repository.xlsx")
	store := table.NewStore(path, table.Options{MaxColumns: 4})
	require.NoError(t, store.Save(context.Background(), &table.Table{Rows: []table.Row{
		table.RowOf("Mc Serial No", "SN-1", "Host Name", "srv1", "IP Address", "10.0.0.1", "Location", "Rack 1"),
		table.RowOf("Mc Serial No", "SN-2", "Host Name", "srv2", "IP Address", "10.0.0.2", "Location", ""),
	}}))

	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	rec := &recorder{}
	svc := asset.NewService(store, asset.WithAuditRecorder(rec))
	srv := NewServer(cfg, svc, opts...)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &fixture{srv: srv, store: store, audit: rec}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/search?query=10.0.0.2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`{"Mc Serial No":"SN-2","Host Name":"srv2","IP Address":"10.0.0.2","Location":""}`,
		strings.TrimSpace(rec.Body.String()),
		"keys keep header order")
}

func TestSearch_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	for _, target := range []string{"/api/search?query=srv9", "/api/search"} {
		rec := f.do(t, http.MethodGet, target, "")
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		resp := decodeError(t, rec)
		assert.Equal(t, "AST001", resp.Code)
		assert.Equal(t, "Asset not found", resp.Message)
	}
}

func TestHeaders(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/headers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var headers []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &headers))
	assert.Equal(t, []string{"Mc Serial No", "Host Name", "IP Address", "Location"}, headers)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPut, "/api/update", `{"query":"srv2","updatedData":{"Location":"Rack 9","Owner":"ops"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Asset updated successfully"}`, rec.Body.String())

	tbl, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rack 9", tbl.Rows[1].Get("Location"))
	assert.Equal(t, "Rack 1", tbl.Rows[0].Get("Location"))

	require.Len(t, f.audit.events, 1)
	ev := f.audit.events[0]
	assert.Equal(t, asset.ActionUpdate, ev.Action)
	assert.Equal(t, "192.0.2.1", ev.IPAddress, "httptest peer address without port")
}

func TestUpdate_Errors(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name     string
		body     string
		status   int
		wantCode string
	}{
		{"not found", `{"query":"nope","updatedData":{"Location":"x"}}`, http.StatusNotFound, "AST001"},
		{"malformed json", `{"query":`, http.StatusBadRequest, "AST003"},
		{"nested value", `{"query":"srv1","updatedData":{"Location":{"rack":1}}}`, http.StatusBadRequest, "AST003"},
		{"empty body", ``, http.StatusBadRequest, "AST003"},
		{"trailing data", `{"query":"srv1"} {}`, http.StatusBadRequest, "AST003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/update", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			f.srv.Router().ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestAdd(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/add", `{"Host Name":"srv3","IP Address":"10.0.0.3","Mc Serial No":"SN-3","Location":42}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Asset added successfully"}`, rec.Body.String())

	search := f.do(t, http.MethodGet, "/api/search?query=SN-3", "")
	require.Equal(t, http.StatusOK, search.Code)
	var row map[string]string
	require.NoError(t, json.Unmarshal(search.Body.Bytes(), &row))
	assert.Equal(t, "42", row["Location"], "numbers keep their literal spelling")
	assert.Equal(t, "srv3", row["Host Name"])
}

func TestAdd_Conflict(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/add", `{"Host Name":"srv3","IP Address":"10.0.0.1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "AST002", resp.Code)
	assert.Equal(t, []string{"IP Address"}, resp.Fields)
	assert.Contains(t, resp.Message, "IP Address")

	tbl, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestAdd_RejectsNonObject(t *testing.T) {
	f := newFixture(t, nil)

	for _, body := range []string{`[]`, `"srv3"`, `null`, `{}`} {
		rec := f.do(t, http.MethodPost, "/api/add", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodDelete, "/api/delete", `{"query":"srv1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Asset deleted successfully","deleted":1}`, rec.Body.String())

	again := f.do(t, http.MethodDelete, "/api/delete", `{"query":"srv1"}`)
	require.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "AST001", decodeError(t, again).Code)

	tbl, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "srv2", tbl.Rows[0].Get("Host Name"))
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/export-pdf?query=SN-2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=srv2.pdf", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	missing := f.do(t, http.MethodGet, "/api/export-pdf?query=srv9", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestExportPDF_CustomExporter(t *testing.T) {
	exp := export.New(export.Options{Title: "Inventory Sheet", Uncompressed: true})
	f := newFixture(t, nil, WithExporter(exp))

	rec := f.do(t, http.MethodGet, "/api/export-pdf?query=srv1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(Inventory Sheet)")
	assert.Contains(t, rec.Body.String(), "(Location: Rack 1)")
}

func TestDownload(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Asset Repository.xlsx"`, rec.Header().Get("Content-Disposition"))

	onDisk, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)
	assert.Equal(t, onDisk, rec.Body.Bytes(), "file is streamed verbatim")
}

func TestMissingTableFile(t *testing.T) {
	cfg := testConfig(t)
	store := table.NewStore(filepath.Join(t.TempDir(), "missing.xlsx"), table.Options{})
	srv := NewServer(cfg, asset.NewService(store))
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	for _, target := range []string{"/api/search?query=srv1", "/api/headers", "/api/download"} {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Equal(t, "FILE001", decodeError(t, rec).Code, target)
	}
}

func TestAuditLog(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, nil)
		rec := f.do(t, http.MethodGet, "/api/audit-log", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "AUD001", decodeError(t, rec).Code)
	})

	t.Run("enabled", func(t *testing.T) {
		log := &recorder{}
		f := newFixture(t, nil, WithAuditLog(log))
		log.events = []asset.AuditEvent{{Action: asset.ActionDelete, AssetKey: "srv1"}}

		rec := f.do(t, http.MethodGet, "/api/audit-log?limit=5&offset=10&action=asset_delete&since=2026-01-02", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var entries []audit.Entry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, asset.SeverityHigh, entries[0].Severity)

		require.Len(t, log.filters, 1)
		assert.Equal(t, 5, log.filters[0].Limit)
		assert.Equal(t, 10, log.filters[0].Offset)
		assert.Equal(t, asset.ActionDelete, log.filters[0].Action)
		assert.Equal(t, 2026, log.filters[0].Since.Year())
	})

	t.Run("empty list is an array", func(t *testing.T) {
		f := newFixture(t, nil, WithAuditLog(&recorder{}))
		rec := f.do(t, http.MethodGet, "/api/audit-log", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("query error", func(t *testing.T) {
		f := newFixture(t, nil, WithAuditLog(&recorder{listErr: errors.New("db down")}))
		rec := f.do(t, http.MethodGet, "/api/audit-log", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "ERR000", decodeError(t, rec).Code)
	})
}

func TestIndexAndStatic(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, id := range []string{"searchInput", "assetDisplay", "tableHeaderRow", "tableDataRow", "editForm", "saveChangesBtn", "exportPdfBtn"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, `/static/app.js`)

	for _, file := range []string{"/static/app.js", "/static/style.css"} {
		rec := f.do(t, http.MethodGet, file, "")
		assert.Equal(t, http.StatusOK, rec.Code, file)
	}
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/static/missing.js", "").Code)
}

func TestSecurityHeaders(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "script-src 'self'")

	noCSP := newFixture(t, func(c *config.Config) { c.Security.EnableCSP = false })
	assert.Empty(t, noCSP.do(t, http.MethodGet, "/", "").Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"https://ops.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/update", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")

	other := httptest.NewRequest(http.MethodGet, "/api/headers", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, other)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIKeyRequired(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/headers", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/", "").Code, "page is not behind the key")

	req := httptest.NewRequest(http.MethodGet, "/api/headers", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 2
	})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/headers", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/headers", "").Code)

	rec := f.do(t, http.MethodGet, "/api/headers", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestErrorPage_HTML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/somewhere", nil)
	rec := httptest.NewRecorder()
	respondError(rec, req, asset.ErrNotFound, http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Asset not found")
	assert.Contains(t, rec.Body.String(), "AST001")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{asset.ErrNotFound, http.StatusNotFound},
		{&asset.ConflictError{Fields: []string{"Host Name"}}, http.StatusConflict},
		{asset.ErrInvalidRecord, http.StatusBadRequest},
		{table.ErrInvalidRow, http.StatusBadRequest},
		{asset.ErrAuditDisabled, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{os.ErrNotExist, http.StatusInternalServerError},
		{table.ErrInvalidWorkbook, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRateLimiter_StopEndsCleanup(t *testing.T) {
	rl := newRateLimiter(1, time.Millisecond)
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))
	rl.stop()
	rl.stop()
}
