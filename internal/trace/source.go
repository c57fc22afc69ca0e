package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Source is a lazy, finite, ordered stream of trace records. Next
// returns io.EOF when exhausted. Sources are not rewindable; replaying
// again means constructing a fresh Source.
type Source interface {
	Next() (Record, error)
}

type sliceSource struct {
	recs []Record
	pos  int
}

// NewSliceSource wraps an in-memory record list.
func NewSliceSource(recs []Record) Source {
	return &sliceSource{recs: recs}
}

func (s *sliceSource) Next() (Record, error) {
	if s.pos >= len(s.recs) {
		return Record{}, io.EOF
	}
	r := s.recs[s.pos]
	s.pos++
	return r, nil
}

// Decoder reads newline-delimited JSON records from a stream. Blank
// lines are skipped.
type Decoder struct {
	sc   *bufio.Scanner
	line int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{sc: bufio.NewScanner(r)}
}

// Next implements Source.
func (d *Decoder) Next() (Record, error) {
	for d.sc.Scan() {
		d.line++
		text := strings.TrimSpace(d.sc.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return Record{}, fmt.Errorf("line %d: %w", d.line, err)
		}
		return rec, nil
	}
	if err := d.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// Encoder writes records as newline-delimited JSON.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

// Write emits one record followed by a newline.
func (e *Encoder) Write(rec Record) error {
	return e.enc.Encode(rec)
}

// ReadAll drains a Source into a slice. Used for loading library files
// whose traces are replayed more than once.
func ReadAll(src Source) ([]Record, error) {
	var recs []Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}
