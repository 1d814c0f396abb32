package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/JonMunkholm/assetrepo/internal/table"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "not found",
			err:         fmt.Errorf("search: %w", ErrNotFound),
			wantCode:    "AST001",
			wantMessage: "Asset not found",
		},
		{
			name:        "conflict lists fields",
			err:         &ConflictError{Fields: []string{"Host Name", "IP Address"}},
			wantCode:    "AST002",
			wantMessage: "Asset already exists with duplicate field(s): Host Name, IP Address",
		},
		{
			name:        "invalid record",
			err:         fmt.Errorf("%w: no fields", ErrInvalidRecord),
			wantCode:    "AST003",
			wantMessage: "Invalid asset data",
		},
		{
			name:        "invalid row json",
			err:         fmt.Errorf("%w: expected a JSON object", table.ErrInvalidRow),
			wantCode:    "AST003",
			wantMessage: "Invalid asset data",
		},
		{
			name:        "missing file",
			err:         fmt.Errorf("open asset table: %w", os.ErrNotExist),
			wantCode:    "FILE001",
			wantMessage: "Asset table file is missing",
		},
		{
			name:        "invalid workbook",
			err:         fmt.Errorf("%w: zip: not a valid zip file", table.ErrInvalidWorkbook),
			wantCode:    "FILE002",
			wantMessage: "Asset table file is not a valid spreadsheet",
		},
		{
			name:        "cancelled",
			err:         context.Canceled,
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("save: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "audit disabled",
			err:         ErrAuditDisabled,
			wantCode:    "AUD001",
			wantMessage: "Audit log is not configured",
		},
		{
			name:        "unknown",
			err:         errors.New("disk on fire"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrNotFound) {
		t.Error("ErrNotFound should be user facing")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("unknown errors should not be user facing")
	}
}

func TestConflictError_Error(t *testing.T) {
	err := &ConflictError{Fields: []string{"Host Name"}}
	want := "asset already exists with duplicate field(s): Host Name"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
