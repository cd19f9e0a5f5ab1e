// Package fastq reads observed sequencing runs and writes simulated
// reads in FASTQ format, plain or gzip-compressed.
package fastq

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLine bounds a single input line; long-read runs put an entire read
// on one line.
const maxLine = 64 * 1024 * 1024

// Record is one sequenced read: its id, bases and Phred+33 quality
// bytes. Sequence and quality always have equal length.
type Record struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// Parse reads FASTQ records from fname, calling process once per read
// with the id, sequence and raw Phred+33 quality bytes. The file may be
// gzip-compressed.
func Parse(fname string, process func(id string, seq, qual []byte) error) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader
	if cf, err := gzip.NewReader(f); err == nil {
		r = cf
	} else {
		f.Seek(0, 0)
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		// id line
		hdr := sc.Text()
		if hdr == "" {
			continue
		}
		if !strings.HasPrefix(hdr, "@") {
			return fmt.Errorf("invalid id line: '%s'", hdr)
		}
		fields := strings.Fields(hdr[1:])
		if len(fields) == 0 {
			return errors.New("empty id line")
		}
		id := fields[0]

		// sequence
		if !sc.Scan() {
			return errors.New("expecting sequence line")
		}
		seq := append([]byte(nil), sc.Bytes()...)

		// '+' line
		if !sc.Scan() || !strings.HasPrefix(sc.Text(), "+") {
			return errors.New("expecting '+' line")
		}

		// quality
		if !sc.Scan() {
			return errors.New("expecting quality line")
		}
		qual := append([]byte(nil), sc.Bytes()...)
		if len(qual) != len(seq) {
			return fmt.Errorf("lengths of sequence and quality lines differ for %s: %d:%d", id, len(seq), len(qual))
		}

		if err := process(id, seq, qual); err != nil {
			return err
		}
	}

	return sc.Err()
}

// Read loads all records from fname.
func Read(fname string) ([]Record, error) {
	var recs []Record

	err := Parse(fname, func(id string, seq, qual []byte) error {
		recs = append(recs, Record{ID: id, Seq: seq, Qual: qual})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recs, nil
}
