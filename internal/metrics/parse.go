package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/delaysim/internal/dynamo"
)

var kinds = map[string]func(signal string, from float64) dynamo.Metric{
	"final":     func(s string, _ float64) dynamo.Metric { return NewFinal(s) },
	"mean":      func(s string, from float64) dynamo.Metric { return NewWindowMean(s, from) },
	"drift":     func(s string, _ float64) dynamo.Metric { return NewDrift(s) },
	"amplitude": func(s string, from float64) dynamo.Metric { return NewAmplitude(s, from) },
}

// Kinds lists the accepted metric kinds.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Parse builds a metric from "kind:signal" or "kind:signal@from", for
// example "mean:TSH@43200". The windowed kinds ignore observations before
// from; the others ignore it.
func Parse(spec string) (dynamo.Metric, error) {
	kind, rest, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("%w: metric %q is not kind:signal", dynamo.ErrConfig, spec)
	}
	build, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric kind %q (have %v)", dynamo.ErrConfig, kind, Kinds())
	}

	signal, fromStr, hasFrom := strings.Cut(rest, "@")
	from := 0.0
	if hasFrom {
		v, err := strconv.ParseFloat(fromStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: metric %q: bad window start: %v", dynamo.ErrConfig, spec, err)
		}
		from = v
	}
	if signal == "" {
		return nil, fmt.Errorf("%w: metric %q names no signal", dynamo.ErrConfig, spec)
	}
	return build(signal, from), nil
}
