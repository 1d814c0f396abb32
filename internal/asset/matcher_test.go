package asset

import (
	"testing"

	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/stretchr/testify/assert"
)

func sampleRows() []table.Row {
	return []table.Row{
		table.RowOf("Mc Serial No", "SN-1", "Host Name", "srv1", "IP Address", "10.0.0.1"),
		table.RowOf("Mc Serial No", "SN-2", "Host Name", "srv2", "IP Address", "10.0.0.2"),
		table.RowOf("Mc Serial No", "srv1", "Host Name", "dup", "IP Address", "10.0.0.9"),
	}
}

func TestFindIndex(t *testing.T) {
	rows := sampleRows()
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by serial", "SN-2", 1},
		{"by host", "srv2", 1},
		{"by ip", "10.0.0.2", 1},
		{"first match wins across fields", "srv1", 0},
		{"exact match only", "SRV1", -1},
		{"no trimming", " srv1", -1},
		{"absent", "srv9", -1},
		{"empty query never matches", "", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindIndex(rows, tt.query))
		})
	}
}

func TestFind(t *testing.T) {
	row, ok := Find(sampleRows(), "10.0.0.9")
	assert.True(t, ok)
	assert.Equal(t, "dup", row.Get("Host Name"))

	_, ok = Find(nil, "srv1")
	assert.False(t, ok)
}

func TestMatches_EmptyFieldsDoNotMatchEmptyQuery(t *testing.T) {
	row := table.RowOf("Mc Serial No", "", "Host Name", "", "IP Address", "")
	assert.False(t, Matches(row, ""))
}

func TestConflicts(t *testing.T) {
	rows := sampleRows()
	tests := []struct {
		name      string
		candidate table.Row
		want      []string
	}{
		{
			name:      "no collision",
			candidate: table.RowOf("Mc Serial No", "SN-3", "Host Name", "srv3", "IP Address", "10.0.0.3"),
			want:      nil,
		},
		{
			name:      "ip collides",
			candidate: table.RowOf("Host Name", "srv3", "IP Address", "10.0.0.1"),
			want:      []string{"IP Address"},
		},
		{
			name:      "every colliding field listed in identity order",
			candidate: table.RowOf("IP Address", "10.0.0.2", "Host Name", "srv1", "Mc Serial No", "SN-2"),
			want:      []string{"Mc Serial No", "Host Name", "IP Address"},
		},
		{
			name:      "same value in another field is not a collision",
			candidate: table.RowOf("Host Name", "SN-1"),
			want:      nil,
		},
		{
			name:      "absent fields are not checked",
			candidate: table.RowOf("Location", "Rack A"),
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conflicts(rows, tt.candidate))
		})
	}
}
