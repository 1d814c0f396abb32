package web

// handlers_common.go contains request parsing and response helpers shared by
// the API handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/assetrepo/internal/asset"
)

// MaxBodySize caps JSON request bodies (1MB).
const MaxBodySize = 1 << 20

// messageResponse is the body of successful mutations.
type messageResponse struct {
	Message string `json:"message"`
	Deleted *int   `json:"deleted,omitempty"`
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseNonNegativeParam is parseIntParam that also accepts zero.
func parseNonNegativeParam(r *http.Request, name string, defaultVal int) int {
	i, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// decodeJSON reads a single JSON value from the request body into v.
// Malformed input is reported as asset.ErrInvalidRecord.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", asset.ErrInvalidRecord)
		}
		return fmt.Errorf("%w: %v", asset.ErrInvalidRecord, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", asset.ErrInvalidRecord)
	}
	return nil
}

// attachment sets Content-Type and a Content-Disposition naming the file.
// Non-ASCII names are encoded per RFC 2231.
func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
}
