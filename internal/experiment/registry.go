package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/delaysim/internal/dynamo"
	"github.com/san-kum/delaysim/internal/integrators"
	"github.com/san-kum/delaysim/internal/models"
)

// Model is what the registry hands out: a configurable system with named
// state and signals.
type Model interface {
	dynamo.System
	dynamo.Configurable
	dynamo.Defaulter
	dynamo.Signaler
}

type Registry struct {
	models map[string]func() Model
	about  map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() Model),
		about:  make(map[string]string),
	}

	r.Register("thyroid", "hypothalamus-pituitary-thyroid axis with four transport lags",
		func() Model { return models.NewThyroid() })
	r.Register("mackey_glass", "blood production with delayed feedback",
		func() Model { return models.NewMackeyGlass() })
	r.Register("hutchinson", "delayed logistic growth",
		func() Model { return models.NewHutchinson() })
	r.Register("decay", "linear decay, no delays",
		func() Model { return models.NewDecay() })

	return r
}

func (r *Registry) Register(name, about string, fn func() Model) {
	r.models[name] = fn
	r.about[name] = about
}

// GetModel returns a fresh model. Models keep scratch buffers, so every
// run needs its own.
func (r *Registry) GetModel(name string) (Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownModel, name, r.ListModels())
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	return integrators.New(name)
}

func (r *Registry) Describe(name string) string { return r.about[name] }

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
