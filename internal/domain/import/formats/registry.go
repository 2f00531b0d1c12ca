package formats

import (
	"fmt"
	"slices"

	"github.com/FACorreiaa/statement-normalizer/internal/domain/import/pdftext"
)

// Registry is the immutable lookup table of formats. It is safe for
// concurrent use.
type Registry struct {
	formats map[int]FormatConfig
	ids     []int
}

// NewRegistry validates every config, compiles PDF line patterns and rejects
// duplicate ids.
func NewRegistry(configs ...FormatConfig) (*Registry, error) {
	r := &Registry{formats: make(map[int]FormatConfig, len(configs))}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.formats[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate format id %d", ErrInvalidFormat, c.ID)
		}
		c = c.clone()
		if c.Strategy == StrategyPDFLines {
			m, err := pdftext.NewLineMatcher(c.LinePattern)
			if err != nil {
				return nil, fmt.Errorf("%w: format %d: %v", ErrInvalidFormat, c.ID, err)
			}
			c.matcher = m
		}
		r.formats[c.ID] = c
		r.ids = append(r.ids, c.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// Default returns a registry of the built-in formats.
func Default() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns a copy of the format registered under id.
func (r *Registry) Lookup(id int) (FormatConfig, bool) {
	c, ok := r.formats[id]
	if !ok {
		return FormatConfig{}, false
	}
	return c.clone(), true
}

// List returns every format ordered by id.
func (r *Registry) List() []FormatConfig {
	out := make([]FormatConfig, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.formats[id].clone())
	}
	return out
}
