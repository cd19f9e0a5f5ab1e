package fastq

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"strings"
)

// Writer writes FASTQ records through a buffer, gzip-compressing when
// the file name ends in .gz or .bgz.
type Writer struct {
	f  *os.File
	gz *gzip.Writer
	w  *bufio.Writer
}

// NewWriter creates fname and returns a writer for it.
func NewWriter(fname string) (*Writer, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}

	w := new(Writer)
	w.f = f
	if strings.HasSuffix(fname, ".gz") || strings.HasSuffix(fname, ".bgz") {
		w.gz = gzip.NewWriter(f)
		w.w = bufio.NewWriter(w.gz)
	} else {
		w.w = bufio.NewWriter(f)
	}

	return w, nil
}

// Write appends one record.
func (w *Writer) Write(id string, seq, qual []byte) error {
	if len(seq) != len(qual) {
		return fmt.Errorf("sequence length (%d) does not match quality length (%d) for %s", len(seq), len(qual), id)
	}

	if _, err := fmt.Fprintf(w.w, "@%s\n", id); err != nil {
		return err
	}
	if _, err := w.w.Write(seq); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n+\n"); err != nil {
		return err
	}
	if _, err := w.w.Write(qual); err != nil {
		return err
	}

	return w.w.WriteByte('\n')
}

// Close flushes buffered data and closes the file.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.gz != nil {
		if e := w.gz.Close(); err == nil {
			err = e
		}
	}
	if e := w.f.Close(); err == nil {
		err = e
	}

	return err
}
