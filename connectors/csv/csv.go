package csv

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

const gzipExt = ".gz"

// readCloser closes a decompressing reader together with its file.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openFile opens path for reading, transparently decompressing .gz files.
func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), gzipExt) {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
}

// writeCloser flushes a compressing writer before closing its file.
type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() error {
	var first error
	for _, c := range wc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// createFile creates path and its parent directory, compressing .gz files.
func createFile(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(filepath.Ext(path), gzipExt) {
		return f, nil
	}
	gz := gzip.NewWriter(f)
	return &writeCloser{Writer: gz, closers: []io.Closer{gz, f}}, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	// Ragged rows and stray quotes are tolerated; missing cells read as "".
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func indexMap(headers []string) map[string]int {
	m := map[string]int{}
	for i, h := range headers {
		m[strings.TrimSpace(strings.ToLower(trimBOM(h)))] = i
	}
	return m
}

func trimBOM(s string) string { return strings.TrimPrefix(s, "\ufeff") }
