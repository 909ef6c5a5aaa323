package formatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrEmptyChain   = errors.New("formatter chain must contain at least one stage")
	ErrUnknownStage = errors.New("unknown formatter stage")
	ErrTypeContract = errors.New("formatter stage violates the chain type contract")
	ErrInvalidParam = errors.New("invalid formatter stage parameter")
)

// Kind tells base stages from decorators.
type Kind int

const (
	KindBase Kind = iota + 1
	KindDecorator
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindDecorator:
		return "decorator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BaseFunc renders a raw identifier as text.
type BaseFunc func(id uuid.UUID) string

// DecoratorFunc transforms the text produced by the stages before it.
type DecoratorFunc func(s string) string

// Stage is one step of a formatter chain. Exactly one of base or decorate is
// set, matching Kind.
type Stage struct {
	kind     Kind
	base     BaseFunc
	decorate DecoratorFunc
}

// Base makes a base stage.
func Base(fn BaseFunc) Stage { return Stage{kind: KindBase, base: fn} }

// Decorator makes a decorator stage.
func Decorator(fn DecoratorFunc) Stage { return Stage{kind: KindDecorator, decorate: fn} }

// Kind returns the stage kind.
func (s Stage) Kind() Kind { return s.kind }

// Constructor builds a stage from the optional parameter of its descriptor.
type Constructor func(param string) (Stage, error)

// Spec is a parsed stage descriptor, written as "name" or "name:param".
type Spec struct {
	Name  string
	Param string
}

// ParseSpec splits a descriptor at the first colon. The name is trimmed and
// lower-cased; the parameter is kept verbatim.
func ParseSpec(desc string) Spec {
	name, param, _ := strings.Cut(desc, ":")
	return Spec{Name: strings.ToLower(strings.TrimSpace(name)), Param: param}
}

func (s Spec) String() string {
	if s.Param == "" {
		return s.Name
	}
	return s.Name + ":" + s.Param
}

// Registry maps stage names to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]registered
}

type registered struct {
	kind Kind
	ctor Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]registered)}
}

// Register installs a constructor under name. The kind is declared up front
// so that a chain can be checked without constructing it.
func (r *Registry) Register(name string, kind Kind, ctor Constructor) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || ctor == nil {
		return fmt.Errorf("register stage: name and constructor are required")
	}
	if kind != KindBase && kind != KindDecorator {
		return fmt.Errorf("register stage %q: invalid kind %v", name, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("register stage %q: already registered", name)
	}
	r.ctors[name] = registered{kind: kind, ctor: ctor}
	return nil
}

// Lookup returns the declared kind of a stage.
func (r *Registry) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.ctors[name]
	return reg.kind, ok
}

// Names returns registered stage names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) construct(spec Spec) (Stage, error) {
	r.mu.RLock()
	reg, ok := r.ctors[spec.Name]
	r.mu.RUnlock()
	if !ok {
		return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStage, spec.Name)
	}

	st, err := reg.ctor(spec.Param)
	if err != nil {
		return Stage{}, fmt.Errorf("stage %q: %w", spec, err)
	}
	if st.kind != reg.kind {
		return Stage{}, fmt.Errorf("%w: stage %q declared %s but built %s", ErrTypeContract, spec, reg.kind, st.kind)
	}
	return st, nil
}
