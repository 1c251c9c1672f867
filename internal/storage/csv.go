package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/delaysim/internal/sweep"
)

// Precision is the number of significant digits written for every value.
const Precision = 9

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', Precision, 64)
}

// SampleWriter is a dynamo.Sink writing CSV: a header row "t,<names>" and
// one row per sample.
type SampleWriter struct {
	w    *csv.Writer
	cols int
	row  []string
}

func NewSampleWriter(w io.Writer) *SampleWriter {
	return &SampleWriter{w: csv.NewWriter(w)}
}

func (s *SampleWriter) Header(names []string) error {
	s.cols = len(names)
	s.row = make([]string, len(names)+1)
	header := append([]string{"t"}, names...)
	return s.w.Write(header)
}

func (s *SampleWriter) Record(t float64, values []float64) error {
	if len(values) != s.cols {
		return fmt.Errorf("storage: record has %d values, header has %d", len(values), s.cols)
	}
	s.row[0] = formatValue(t)
	for i, v := range values {
		s.row[i+1] = formatValue(v)
	}
	return s.w.Write(s.row)
}

// Flush writes buffered rows and reports any earlier write error.
func (s *SampleWriter) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

// Series is a loaded sample table.
type Series struct {
	Names []string
	Times []float64
	Rows  [][]float64
}

// Column returns one signal across all samples.
func (s *Series) Column(name string) ([]float64, error) {
	idx := -1
	for i, n := range s.Names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("storage: no column %q (have %v)", name, s.Names)
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

func ReadSamples(r io.Reader) (*Series, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Series{}, nil
	}

	header := records[0]
	if len(header) == 0 || header[0] != "t" {
		return nil, fmt.Errorf("storage: samples header must start with t, got %v", header)
	}
	s := &Series{
		Names: header[1:],
		Times: make([]float64, 0, len(records)-1),
		Rows:  make([][]float64, 0, len(records)-1),
	}
	for line, record := range records[1:] {
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("storage: samples line %d: %w", line+2, err)
		}
		s.Times = append(s.Times, vals[0])
		s.Rows = append(s.Rows, vals[1:])
	}
	return s, nil
}

// WriteSweep writes the two-column table "<param>,<observe>" in grid order.
func WriteSweep(w io.Writer, res *sweep.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{res.Param, res.Observe}); err != nil {
		return err
	}
	for i := range res.Params {
		if err := cw.Write([]string{formatValue(res.Params[i]), formatValue(res.Values[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadSweep(r io.Reader) (*sweep.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty sweep table")
	}

	res := &sweep.Result{
		Param:   records[0][0],
		Observe: records[0][1],
		Params:  make([]float64, 0, len(records)-1),
		Values:  make([]float64, 0, len(records)-1),
	}
	for line, record := range records[1:] {
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("storage: sweep line %d: %w", line+2, err)
		}
		res.Params = append(res.Params, vals[0])
		res.Values = append(res.Values, vals[1])
	}
	return res, nil
}

func parseRow(record []string) ([]float64, error) {
	vals := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
