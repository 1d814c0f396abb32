// Package table reads and writes the asset inventory spreadsheet.
//
// The workbook is treated as a flat table: row 1 of the first sheet names the
// columns and every following row is a record. A Store never caches; each
// Load reopens the file and each Save replaces it.
package table

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidWorkbook is returned when the table file exists but is not a
// readable spreadsheet.
var ErrInvalidWorkbook = errors.New("not a valid spreadsheet")

// DefaultSheetName is the sheet written by Save.
const DefaultSheetName = "Sheet1"

// Table is the whole inventory: its header list and its rows in file order.
type Table struct {
	Headers HeaderList
	Rows    []Row
}

// Columns returns the column names Save writes: the distinct header names,
// then any key that only appears in rows, in first-appearance order.
func (t *Table) Columns() []string {
	cols := t.Headers.Keys()
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		seen[c] = struct{}{}
	}
	for _, row := range t.Rows {
		for _, k := range row.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return cols
}

// Options controls the spans read and the sheet written.
type Options struct {
	SheetName  string // sheet name used by Save (default Sheet1)
	MaxColumns int    // header span (default 37, A..AK)
	MaxRows    int    // last sheet row read by Load (default 1000)
}

// Store is the file-backed table. It holds no rows between calls.
type Store struct {
	path string
	opts Options
}

// NewStore creates a Store for the workbook at path.
func NewStore(path string, opts Options) *Store {
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if opts.MaxColumns <= 0 {
		opts.MaxColumns = DefaultMaxColumns
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	return &Store{path: path, opts: opts}
}

// Path returns the workbook location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the header list and every non-blank record row within the span.
func (s *Store) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, sheet, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers, err := s.readHeaders(f, sheet)
	if err != nil {
		return nil, err
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrInvalidWorkbook, sheet, err)
	}

	t := &Table{Headers: headers}
	for i := 1; i < len(raw) && i < s.opts.MaxRows; i++ {
		cells := raw[i]
		if blank(cells, s.opts.MaxColumns) {
			continue
		}
		row := NewRow()
		for c, h := range headers {
			v := ""
			if c < len(cells) {
				v = cells[c]
			}
			row.Set(h.Name, v)
		}
		t.Rows = append(t.Rows, row)
	}

	slog.Debug("asset table loaded",
		"path", s.path,
		"sheet", sheet,
		"rows", len(t.Rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return t, nil
}

// LoadHeaders derives the header list without reading record rows.
func (s *Store) LoadHeaders(ctx context.Context) (HeaderList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, sheet, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.readHeaders(f, sheet)
}

// Save replaces the workbook with a single sheet holding t.
// The new file is written beside the old one and renamed into place.
func (s *Store) Save(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if s.opts.SheetName != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, s.opts.SheetName); err != nil {
			return fmt.Errorf("name sheet %q: %w", s.opts.SheetName, err)
		}
	}

	sw, err := f.NewStreamWriter(s.opts.SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	cols := t.Columns()
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(cols))
		for j, c := range cols {
			if v := row.Get(c); v != "" {
				values[j] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if err := s.replace(f); err != nil {
		return err
	}

	slog.Debug("asset table saved",
		"path", s.path,
		"rows", len(t.Rows),
		"columns", len(cols),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Open returns the raw workbook file for verbatim streaming.
// The caller closes the file.
func (s *Store) Open(ctx context.Context) (*os.File, os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open asset table: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("stat asset table: %w", err)
	}
	return file, info, nil
}

// open opens the workbook and resolves its first sheet.
func (s *Store) open() (*excelize.File, string, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, "", fmt.Errorf("open asset table: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, "", fmt.Errorf("open asset table: %w", err)
		}
		return nil, "", fmt.Errorf("%w: %s: %v", ErrInvalidWorkbook, s.path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, "", fmt.Errorf("%w: %s has no sheets", ErrInvalidWorkbook, s.path)
	}
	return f, sheets[0], nil
}

// readHeaders reads row 1 cell by cell across the column span.
func (s *Store) readHeaders(f *excelize.File, sheet string) (HeaderList, error) {
	cells := make([]string, s.opts.MaxColumns)
	for c := 0; c < s.opts.MaxColumns; c++ {
		ref, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: read header %s: %v", ErrInvalidWorkbook, ref, err)
		}
		cells[c] = v
	}
	return deriveHeaders(cells, s.opts.MaxColumns), nil
}

// replace writes f to a temporary file in the target directory and renames
// it over the workbook, keeping the previous file mode when there was one.
func (s *Store) replace(f *excelize.File) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".asset-table-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if info, statErr := os.Stat(s.path); statErr == nil {
		if err = tmp.Chmod(info.Mode().Perm()); err != nil {
			tmp.Close()
			return fmt.Errorf("chmod temp workbook: %w", err)
		}
	}

	if err = f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close workbook: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace asset table: %w", err)
	}
	return nil
}

// blank reports whether every cell within span is empty.
func blank(cells []string, span int) bool {
	for i, c := range cells {
		if i >= span {
			break
		}
		if c != "" {
			return false
		}
	}
	return true
}
