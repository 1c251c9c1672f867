package sim

import (
	"go.uber.org/zap"

	"github.com/san-kum/delaysim/internal/delay"
	"github.com/san-kum/delaysim/internal/dynamo"
)

type Option func(*Simulator)

func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSink receives the sampled record every Config.SampleEvery steps.
func WithSink(sink dynamo.Sink) Option {
	return func(s *Simulator) { s.sink = sink }
}

func WithMetric(m dynamo.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m) }
}

// WithDelayMode overrides Config.DelayMode.
func WithDelayMode(mode delay.Mode) Option {
	return func(s *Simulator) {
		s.mode = mode
		s.modeSet = true
	}
}

func WithInput(in dynamo.Input) Option {
	return func(s *Simulator) { s.input = in }
}
