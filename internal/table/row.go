package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRow is returned when a JSON document cannot be read as a Row.
var ErrInvalidRow = errors.New("invalid row")

// Row is one table row: an ordered mapping from column name to cell text.
// The zero value is an empty row ready to use.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty row.
func NewRow() Row {
	return Row{values: make(map[string]string)}
}

// RowOf builds a row from alternating key, value arguments.
// A trailing key without a value is stored as empty.
func RowOf(pairs ...string) Row {
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		v := ""
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		r.Set(pairs[i], v)
	}
	return r
}

// Get returns the value stored under key, or "" when absent.
func (r Row) Get(key string) string {
	return r.values[key]
}

// Lookup returns the value stored under key and whether the key is present.
func (r Row) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Set stores value under key. A new key is appended; an existing key keeps
// its position and takes the new value.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the row's keys in order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r Row) Len() int {
	return len(r.keys)
}

// Each calls fn for every key/value pair in order.
func (r Row) Each(fn func(key, value string)) {
	for _, k := range r.keys {
		fn(k, r.values[k])
	}
}

// Clone returns an independent copy of r.
func (r Row) Clone() Row {
	c := Row{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]string, len(r.values)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Merge returns a copy of r with every key of patch written over it.
// Keys not in patch keep their value; keys new to r are appended in patch order.
func (r Row) Merge(patch Row) Row {
	out := r.Clone()
	patch.Each(out.Set)
	return out
}

// Equal reports whether r and o hold the same keys in the same order with
// the same values.
func (r Row) Equal(o Row) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k || o.values[k] != r.values[k] {
			return false
		}
	}
	return true
}

// Map returns the row as a plain map. Key order is lost.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the row as a JSON object in key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
// Scalar values are stored as text: null becomes "", numbers and booleans
// keep their literal spelling. Nested objects and arrays are rejected.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidRow)
	}

	row := NewRow()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRow, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected object key", ErrInvalidRow)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidRow, key, err)
		}
		value, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidRow, key, err)
		}
		row.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRow, err)
	}

	*r = row
	return nil
}

// scalarText renders a raw JSON scalar as cell text.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("empty value")
	}
	switch raw[0] {
	case 'n':
		return "", nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("value must be a string, number, boolean or null")
	default:
		return string(raw), nil
	}
}
