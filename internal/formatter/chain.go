// Package formatter turns identifiers into display text through a chain of
// one base stage followed by decorators.
package formatter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TemplateChar marks a digit position in TemplateString.
const TemplateChar = 'X'

// Formatter is an immutable, fully built chain.
type Formatter struct {
	base       BaseFunc
	decorators []DecoratorFunc
	specs      []Spec
}

// Build validates and assembles a chain from descriptors. The first stage
// must be a base stage and every later stage a decorator. Either a complete
// Formatter is returned or an error; nothing is partially applied.
func Build(r *Registry, descriptors []string) (*Formatter, error) {
	if len(descriptors) == 0 {
		return nil, ErrEmptyChain
	}

	specs := make([]Spec, len(descriptors))
	for i, d := range descriptors {
		specs[i] = ParseSpec(d)
	}

	// Check kinds before constructing anything.
	for i, spec := range specs {
		kind, ok := r.Lookup(spec.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStage, spec.Name)
		}
		if i == 0 && kind != KindBase {
			return nil, fmt.Errorf("%w: first stage %q must be a base stage, not a %s", ErrTypeContract, spec, kind)
		}
		if i > 0 && kind != KindDecorator {
			return nil, fmt.Errorf("%w: stage %d (%q) must be a decorator, not a %s", ErrTypeContract, i, spec, kind)
		}
	}

	f := &Formatter{specs: specs}
	for i, spec := range specs {
		st, err := r.construct(spec)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			f.base = st.base
			continue
		}
		f.decorators = append(f.decorators, st.decorate)
	}
	return f, nil
}

// Format renders id through the base stage and then each decorator in
// order, so the last decorator wraps all the others.
func (f *Formatter) Format(id uuid.UUID) string {
	s := f.base(id)
	for _, d := range f.decorators {
		s = d(s)
	}
	return s
}

// TemplateString formats the nil identifier and replaces every '0' with
// TemplateChar. Positions of TemplateChar are the positions of real digits
// in any formatted identifier.
func (f *Formatter) TemplateString() string {
	return strings.ReplaceAll(f.Format(uuid.Nil), "0", string(TemplateChar))
}

// Digits counts the digit positions in TemplateString.
func (f *Formatter) Digits() int {
	return strings.Count(f.TemplateString(), string(TemplateChar))
}

// Specs returns the descriptors the chain was built from.
func (f *Formatter) Specs() []string {
	out := make([]string, len(f.specs))
	for i, s := range f.specs {
		out[i] = s.String()
	}
	return out
}
