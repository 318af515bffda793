package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"issue-report/domain/issues"
)

const xlsxExt = ".xlsx"

// RawReader iterates the rows of a raw issue export. Supported inputs are
// comma-delimited files (optionally gzip-compressed) and the first sheet of
// an .xlsx workbook.
type RawReader struct {
	header []string
	next   func() ([]string, error)
	close  func() error
}

// OpenRaw opens the raw export at path and reads its header row.
func OpenRaw(path string) (*RawReader, error) {
	var (
		r   *RawReader
		err error
	)
	if strings.EqualFold(filepath.Ext(path), xlsxExt) {
		r, err = openWorkbook(path)
	} else {
		r, err = openDelimited(path)
	}
	if err != nil {
		return nil, err
	}
	header, err := r.next()
	if err != nil {
		_ = r.close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, issues.ErrMissingHeader)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}
	r.header = header
	return r, nil
}

func openDelimited(path string) (*RawReader, error) {
	rc, err := openFile(path)
	if err != nil {
		return nil, err
	}
	cr := newReader(rc)
	return &RawReader{next: cr.Read, close: rc.Close}, nil
}

func openWorkbook(path string) (*RawReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%s: workbook has no sheets", path)
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	next := func() ([]string, error) {
		for rows.Next() {
			cols, err := rows.Columns()
			if err != nil {
				return nil, err
			}
			// Blank rows are skipped, as the CSV reader skips empty lines.
			if len(cols) == 0 {
				continue
			}
			return cols, nil
		}
		if err := rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	closeAll := func() error {
		rerr := rows.Close()
		if err := f.Close(); err != nil {
			return err
		}
		return rerr
	}
	return &RawReader{next: next, close: closeAll}, nil
}

// Header returns the column names of the export.
func (r *RawReader) Header() []string { return r.header }

// Read returns the next row keyed by column name. Columns the row is too
// short to carry are absent from the record. It returns io.EOF after the
// last row.
func (r *RawReader) Read() (issues.RawRecord, error) {
	cells, err := r.next()
	if err != nil {
		return nil, err
	}
	rec := make(issues.RawRecord, len(r.header))
	for i, name := range r.header {
		if i >= len(cells) {
			break
		}
		rec[name] = cells[i]
	}
	return rec, nil
}

// Close releases the underlying file.
func (r *RawReader) Close() error { return r.close() }

// WriteRaw writes rows as a raw export with RawHeaders columns.
func WriteRaw(path string, rows []issues.RawRecord) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(issues.RawHeaders); err != nil {
		_ = f.Close()
		return err
	}
	for _, rec := range rows {
		row := make([]string, len(issues.RawHeaders))
		for i, col := range issues.RawHeaders {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
