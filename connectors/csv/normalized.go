package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"issue-report/domain/issues"
)

// Writer streams normalized records to a file, header first.
type Writer struct {
	file   io.WriteCloser
	writer *csv.Writer
	count  int
}

// CreateWriter creates the normalized table at path and writes its header.
func CreateWriter(path string) (*Writer, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(issues.Headers); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	return &Writer{file: f, writer: w}, nil
}

// Write appends one record.
func (w *Writer) Write(rec issues.Record) error {
	if err := w.writer.Write(rec.Row()); err != nil {
		return fmt.Errorf("failed to write record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count is the number of records written so far.
func (w *Writer) Count() int { return w.count }

// Close flushes buffered rows and closes the file.
func (w *Writer) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// requiredColumns are the normalized columns aggregation and the reports read.
// Any other column may be absent and then reads as "".
var requiredColumns = []string{
	"issue_number",
	"issue_title",
	"issue_state",
	"issue_labels",
	"issue_user",
	"issue_created_at",
	"comment_user",
	"row_type",
}

// ReadNormalized loads every record of the normalized table at path.
func ReadNormalized(path string) ([]issues.Record, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readNormalized(path, f)
}

func readNormalized(name string, src io.Reader) ([]issues.Record, error) {
	r := newReader(src)
	head, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, issues.ErrMissingHeader)
		}
		return nil, err
	}
	idx := indexMap(head)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s missing column %s", name, col)
		}
	}

	res := []issues.Record{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		res = append(res, issues.FromRow(idx, rec))
	}
	return res, nil
}
