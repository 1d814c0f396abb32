package asset

import "github.com/JonMunkholm/assetrepo/internal/table"

// Matches reports whether any identity field of row equals query exactly.
// An empty query matches nothing.
func Matches(row table.Row, query string) bool {
	if query == "" {
		return false
	}
	for _, f := range IdentityFields {
		if row.Get(string(f)) == query {
			return true
		}
	}
	return false
}

// FindIndex returns the index of the first row matching query, or -1.
func FindIndex(rows []table.Row, query string) int {
	for i, row := range rows {
		if Matches(row, query) {
			return i
		}
	}
	return -1
}

// Find returns the first row matching query.
func Find(rows []table.Row, query string) (table.Row, bool) {
	i := FindIndex(rows, query)
	if i < 0 {
		return table.Row{}, false
	}
	return rows[i], true
}

// conflicts returns, in identity order, every identity field whose value in
// candidate already appears in the same field of some row. Fields absent from
// candidate are not checked.
func conflicts(rows []table.Row, candidate table.Row) []string {
	var fields []string
	for _, f := range IdentityFields {
		want, ok := candidate.Lookup(string(f))
		if !ok {
			continue
		}
		for _, row := range rows {
			if got, ok := row.Lookup(string(f)); ok && got == want {
				fields = append(fields, string(f))
				break
			}
		}
	}
	return fields
}
