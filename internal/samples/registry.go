package samples

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSample is returned when a sample ID is not in the registry.
var ErrUnknownSample = errors.New("unknown sample")

// Registry holds loaded sample definitions keyed by ID.
type Registry struct {
	byID map[string]*Def
	all  []Def
}

// NewRegistry creates a registry from loaded definitions.
func NewRegistry(defs []Def) *Registry {
	r := &Registry{
		byID: make(map[string]*Def, len(defs)),
		all:  defs,
	}
	for i := range defs {
		r.byID[defs[i].ID] = &defs[i]
	}
	return r
}

// LoadRegistry loads and creates a registry from the embedded samples.json.
func LoadRegistry() (*Registry, error) {
	defs, err := LoadDefs()
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, errors.New("no samples loaded from samples.json")
	}
	return NewRegistry(defs), nil
}

// MustLoadRegistry loads a registry, panicking on error.
func MustLoadRegistry() *Registry {
	r, err := LoadRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// GetByID returns the definition with the given ID, or nil if not found.
func (r *Registry) GetByID(id string) *Def {
	return r.byID[id]
}

// Lookup returns the definition with the given ID or ErrUnknownSample.
func (r *Registry) Lookup(id string) (*Def, error) {
	def := r.byID[id]
	if def == nil {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownSample, id, r.IDs())
	}
	return def, nil
}

// IDs returns the sorted sample IDs.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all definitions in file order.
func (r *Registry) All() []Def {
	return r.all
}

// Count returns the number of samples in the registry.
func (r *Registry) Count() int {
	return len(r.all)
}
