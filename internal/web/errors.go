package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details and the request ID (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted as JSON for API calls and as a small HTML page otherwise
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls s.fail(w, r, err), which picks the status via statusFor
//  3. Error is mapped via asset.MapError to get the user-facing message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in the appropriate format for the client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/JonMunkholm/assetrepo/internal/web/templates"
	"github.com/go-chi/chi/v5/middleware"
)

var errRateLimited = errors.New("rate limit exceeded")

var rateLimitedMessage = asset.UserMessage{
	Message: "Too many requests",
	Action:  "Wait a minute before trying again",
	Code:    "RATE001",
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// fail responds with the status that matches err's classification.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var ce *asset.ConflictError
	switch {
	case errors.Is(err, asset.ErrNotFound), errors.Is(err, asset.ErrAuditDisabled):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.Is(err, asset.ErrInvalidRecord), errors.Is(err, table.ErrInvalidRow):
		return http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage maps err to its client message.
func userMessage(err error) asset.UserMessage {
	if errors.Is(err, errRateLimited) {
		return rateLimitedMessage
	}
	return asset.MapError(err)
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns JSON or HTML
// depending on the request.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := userMessage(err)

	level := slog.LevelError
	if statusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		resp := ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		}
		var ce *asset.ConflictError
		if errors.As(err, &ce) {
			resp.Fields = ce.Fields
		}
		respondErrorJSON(w, resp, statusCode)
		return
	}
	respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg asset.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
