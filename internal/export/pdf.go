// Package export renders asset records as downloadable documents.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/go-pdf/fpdf"
)

const (
	DefaultTitle = "Asset Report"
	DefaultName  = "asset"

	missingValue = "N/A"
)

// Options configures an Exporter.
type Options struct {
	Title       string // document heading (default: Asset Report)
	DefaultName string // file name stem when an asset has no Host Name (default: asset)

	// Uncompressed leaves page streams readable, for tests and debugging.
	Uncompressed bool
}

// Exporter writes single-asset PDF reports.
type Exporter struct {
	opts Options
}

// New creates an Exporter, applying defaults for empty options.
func New(opts Options) *Exporter {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.DefaultName == "" {
		opts.DefaultName = DefaultName
	}
	return &Exporter{opts: opts}
}

// WriteAssetPDF writes a report for row to w: the underlined title, a blank
// line, then one "key: value" line per field in row order.
func (e *Exporter) WriteAssetPDF(w io.Writer, row table.Row) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!e.opts.Uncompressed)
	pdf.SetTitle(e.opts.Title, true)
	pdf.SetCreator("assetrepo", true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "U", 16)
	pdf.Cell(0, 10, tr(e.opts.Title))
	pdf.Ln(10)
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	row.Each(func(key, value string) {
		if value == "" {
			value = missingValue
		}
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%s: %s", key, value)), "", "L", false)
	})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render asset pdf: %w", err)
	}
	return nil
}

// FileName returns the attachment name for row's report.
func (e *Exporter) FileName(row table.Row) string {
	return AssetFileName(row, e.opts.DefaultName)
}

// AssetFileName returns "<Host Name>.pdf", or fallback+".pdf" when the host
// name is empty or has no usable characters.
func AssetFileName(row table.Row, fallback string) string {
	name := sanitizeFileName(row.Get(string(asset.FieldHostName)))
	if name == "" {
		name = fallback
	}
	if name == "" {
		name = DefaultName
	}
	return name + ".pdf"
}

// sanitizeFileName replaces path separators, reserved and control characters
// with underscores and trims leading and trailing dots and spaces.
func sanitizeFileName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, " .")
	if strings.Trim(s, "_") == "" {
		return ""
	}
	return s
}
