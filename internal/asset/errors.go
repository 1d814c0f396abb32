package asset

// errors.go defines the domain errors and their user-facing messages.
//
// Error codes quoted to support staff:
//
//	AST001  Asset not found          no identity field equals the query
//	AST002  Asset already exists     add collided on one or more identity fields
//	AST003  Invalid asset data       request body is not a flat JSON object
//	FILE001 Asset table missing      the spreadsheet file does not exist
//	FILE002 Asset table unreadable   the file is not a valid spreadsheet
//	REQ001  Request cancelled        client went away mid-request
//	REQ002  Request timed out        request exceeded the server deadline
//	AUD001  Audit log unavailable    no audit database configured
//	ERR000  Unexpected error         check server logs with the request ID

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/assetrepo/internal/table"
)

// ErrNotFound is returned when no row matches a query.
var ErrNotFound = errors.New("asset not found")

// ErrInvalidRecord is returned for malformed asset input.
var ErrInvalidRecord = errors.New("invalid asset data")

// ErrAuditDisabled is returned by audit queries when no audit store is configured.
var ErrAuditDisabled = errors.New("audit log not configured")

// ConflictError reports the identity fields an added asset collides on.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("asset already exists with duplicate field(s): %s", strings.Join(e.Fields, ", "))
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// errorRule maps an error class to its user message.
type errorRule struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// errorRules are checked in order; the first match wins.
var errorRules = []errorRule{
	{
		match: is(ErrNotFound),
		msg: UserMessage{
			Message: "Asset not found",
			Action:  "Search by Mc Serial No, Host Name or IP Address",
			Code:    "AST001",
		},
	},
	{
		match: func(err error) bool {
			var ce *ConflictError
			return errors.As(err, &ce)
		},
		msg: UserMessage{
			Message: "Asset already exists",
			Action:  "Use unique Mc Serial No, Host Name and IP Address values",
			Code:    "AST002",
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, ErrInvalidRecord) || errors.Is(err, table.ErrInvalidRow)
		},
		msg: UserMessage{
			Message: "Invalid asset data",
			Action:  "Send a JSON object of field names to text values",
			Code:    "AST003",
		},
	},
	{
		match: is(os.ErrNotExist),
		msg: UserMessage{
			Message: "Asset table file is missing",
			Action:  "Check the ASSET_FILE setting on the server",
			Code:    "FILE001",
		},
	},
	{
		match: is(table.ErrInvalidWorkbook),
		msg: UserMessage{
			Message: "Asset table file is not a valid spreadsheet",
			Action:  "Restore the file from a known good copy",
			Code:    "FILE002",
		},
	},
	{
		match: is(context.Canceled),
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		match: is(context.DeadlineExceeded),
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again in a few moments",
			Code:    "REQ002",
		},
	},
	{
		match: is(ErrAuditDisabled),
		msg: UserMessage{
			Message: "Audit log is not configured",
			Action:  "Set DATABASE_URL to enable the audit log",
			Code:    "AUD001",
		},
	},
}

// MapError converts an error into a user-facing message.
// Returns an empty UserMessage for nil and ERR000 for unrecognised errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, rule := range errorRules {
		if rule.match(err) {
			msg := rule.msg
			var ce *ConflictError
			if errors.As(err, &ce) {
				msg.Message = "Asset already exists with duplicate field(s): " + strings.Join(ce.Fields, ", ")
			}
			return msg
		}
	}
	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
