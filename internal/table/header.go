package table

import (
	"strconv"
	"strings"
)

// DefaultMaxColumns is the header span A through AK.
const DefaultMaxColumns = 37

// DefaultMaxRows is the last sheet row read on load (header included).
const DefaultMaxRows = 1000

const syntheticPrefix = "UNKNOWN_"

// Header describes one column of the table as derived from row 1.
type Header struct {
	Index     int    // 0-based column index
	Name      string // trimmed row-1 text, or UNKNOWN_<Index>
	Synthetic bool   // true when row 1 had no usable text for this column
}

// HeaderList is the ordered column set of a table. Its length always equals
// the configured column span; names are not deduplicated.
type HeaderList []Header

// SyntheticName returns the placeholder name for an unnamed column.
func SyntheticName(index int) string {
	return syntheticPrefix + strconv.Itoa(index)
}

// IsSynthetic reports whether name is a placeholder produced for an unnamed column.
func IsSynthetic(name string) bool {
	rest, ok := strings.CutPrefix(name, syntheticPrefix)
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// deriveHeaders builds a HeaderList of exactly span entries from raw row-1 cells.
func deriveHeaders(cells []string, span int) HeaderList {
	headers := make(HeaderList, span)
	for i := 0; i < span; i++ {
		name := ""
		if i < len(cells) {
			name = strings.TrimSpace(cells[i])
		}
		if name == "" {
			headers[i] = Header{Index: i, Name: SyntheticName(i), Synthetic: true}
			continue
		}
		headers[i] = Header{Index: i, Name: name}
	}
	return headers
}

// Names returns every header name in column order, duplicates included.
func (h HeaderList) Names() []string {
	names := make([]string, len(h))
	for i, hd := range h {
		names[i] = hd.Name
	}
	return names
}

// Keys returns the distinct header names in order of first occurrence.
// These are the keys of every loaded Row.
func (h HeaderList) Keys() []string {
	seen := make(map[string]struct{}, len(h))
	keys := make([]string, 0, len(h))
	for _, hd := range h {
		if _, ok := seen[hd.Name]; ok {
			continue
		}
		seen[hd.Name] = struct{}{}
		keys = append(keys, hd.Name)
	}
	return keys
}

// Contains reports whether any column is named name.
func (h HeaderList) Contains(name string) bool {
	for _, hd := range h {
		if hd.Name == name {
			return true
		}
	}
	return false
}

// Missing returns the subset of names that no column carries.
func (h HeaderList) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !h.Contains(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
