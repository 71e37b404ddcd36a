// Package records converts classification exports to and from annotation
// records. Only the subject and annotation columns are kept; everything else
// in the export is dropped.
package records

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/transcribe-cli/internal/fileio"
	"github.com/sells-group/transcribe-cli/internal/model"
)

// Default column names in classification exports.
const (
	DefaultSubjectColumn    = "subject_ids"
	DefaultAnnotationColumn = "annotations"
)

// Columns names the input columns holding the subject id and annotation.
type Columns struct {
	Subject    string
	Annotation string
}

// DefaultColumns returns the standard export column names.
func DefaultColumns() Columns {
	return Columns{Subject: DefaultSubjectColumn, Annotation: DefaultAnnotationColumn}
}

func (c Columns) withDefaults() Columns {
	if c.Subject == "" {
		c.Subject = DefaultSubjectColumn
	}
	if c.Annotation == "" {
		c.Annotation = DefaultAnnotationColumn
	}
	return c
}

// ReadOptions configures record parsing.
type ReadOptions struct {
	Columns Columns
	Charset string // CSV input encoding; empty means UTF-8
	Sheet   string // XLSX sheet name; empty means the first sheet
}

// ReadCSV parses a CSV export with a header row. A column missing from the
// header yields empty values rather than an error. Blank rows are skipped.
func ReadCSV(ctx context.Context, r io.Reader, opts ReadOptions) ([]model.Annotation, error) {
	header, rows, err := fileio.ReadCSV(ctx, r, fileio.CSVOptions{
		HasHeader: true,
		Charset:   opts.Charset,
		SkipBlank: true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "records: read csv")
	}
	return mapRows(header, rows, opts.Columns), nil
}

// ReadXLSX parses an XLSX export whose first row is the header.
func ReadXLSX(path string, opts ReadOptions) ([]model.Annotation, error) {
	header, rows, err := fileio.ReadXLSX(path, fileio.XLSXOptions{SheetName: opts.Sheet})
	if err != nil {
		return nil, eris.Wrap(err, "records: read xlsx")
	}
	return mapRows(header, rows, opts.Columns), nil
}

// ReadFile reads records from path, choosing the parser by file extension.
func ReadFile(ctx context.Context, path string, opts ReadOptions) ([]model.Annotation, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "records: open file")
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(ctx, f, opts)
}

func mapRows(header []string, rows [][]string, cols Columns) []model.Annotation {
	cols = cols.withDefaults()
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		if _, dup := colIdx[name]; !dup {
			colIdx[name] = i
		}
	}

	out := make([]model.Annotation, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Annotation{
			SubjectID: getCol(row, colIdx, cols.Subject),
			Text:      getCol(row, colIdx, cols.Annotation),
		})
	}
	return out
}

// getCol safely retrieves a column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// WriteCSV writes records with a subject_ids,annotations header.
func WriteCSV(w io.Writer, recs []model.Annotation) error {
	return encodeCSV(w, model.Annotation{}, recs)
}

// WriteReport writes one diagnostics row per resolved subject.
func WriteReport(w io.Writer, details []model.Resolution) error {
	return encodeCSV(w, model.Resolution{}, details)
}

// WriteCSVFile writes records to path, creating or truncating it.
func WriteCSVFile(path string, recs []model.Annotation) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, recs) })
}

// WriteReportFile writes diagnostics to path, creating or truncating it.
func WriteReportFile(path string, details []model.Resolution) error {
	return writeFile(path, func(w io.Writer) error { return WriteReport(w, details) })
}

func encodeCSV[T any](w io.Writer, header T, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(header); err != nil {
		return eris.Wrap(err, "records: write header")
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "records: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "records: flush csv")
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "records: create directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "records: create file")
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "records: close file")
	}
	return nil
}
