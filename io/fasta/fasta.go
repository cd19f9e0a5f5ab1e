// Package fasta reads reference sequences from FASTA files, plain or
// gzip-compressed.
package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLine bounds a single input line. Reference files commonly wrap
// sequences but some writers emit one line per contig.
const maxLine = 64 * 1024 * 1024

// Record is one reference sequence: the first word of its header line
// and its bases, uppercased.
type Record struct {
	ID  string
	Seq []byte
}

// Parse reads FASTA records from fname, calling process once per
// record. The file may be gzip-compressed.
func Parse(fname string, process func(id string, seq []byte) error) error {
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

	var id string
	var seq []byte
	flush := func() error {
		if id == "" {
			return nil
		}

		err := process(id, bytes.ToUpper(seq))
		id = ""
		seq = nil
		return err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return err
			}

			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return fmt.Errorf("%s: empty sequence header", fname)
			}
			id = fields[0]
			continue
		}

		if id == "" {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return fmt.Errorf("%s: sequence data before first header", fname)
		}

		seq = append(seq, line...)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	return flush()
}

// Read loads all records from fname. It is an error for the file to
// contain no sequences.
func Read(fname string) ([]Record, error) {
	var recs []Record

	err := Parse(fname, func(id string, seq []byte) error {
		recs = append(recs, Record{ID: id, Seq: seq})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("no sequences found in %s", fname)
	}

	return recs, nil
}

// TotalLength sums the sequence lengths of all records.
func TotalLength(recs []Record) int {
	n := 0
	for _, r := range recs {
		n += len(r.Seq)
	}

	return n
}
