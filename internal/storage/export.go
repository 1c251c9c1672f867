package storage

import (
	"encoding/json"
	"errors"
	"io"
)

type ExportData struct {
	Run     *RunMetadata `json:"run"`
	Names   []string     `json:"names,omitempty"`
	Times   []float64    `json:"times,omitempty"`
	Samples [][]float64  `json:"samples,omitempty"`
	Params  []float64    `json:"params,omitempty"`
	Values  []float64    `json:"values,omitempty"`
}

// ExportJSON writes a run's metadata together with its sample or sweep
// table, whichever it has.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Run: meta}

	switch meta.Kind {
	case KindSweep:
		res, err := s.LoadSweep(runID)
		if err != nil {
			return err
		}
		data.Params, data.Values = res.Params, res.Values
	default:
		series, err := s.LoadSamples(runID)
		if err == nil {
			data.Names, data.Times, data.Samples = series.Names, series.Times, series.Rows
		} else if !isNotFound(err) {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func isNotFound(err error) bool { return errors.Is(err, ErrRunNotFound) }
