package settings

import (
	"fmt"
	"io"
	"sort"

	"github.com/weiawesome/genguid/internal/config"
	"github.com/weiawesome/genguid/internal/counter"
	"github.com/weiawesome/genguid/internal/factory"
	"github.com/weiawesome/genguid/internal/formatter"
	"github.com/weiawesome/genguid/internal/generator"
	"github.com/weiawesome/genguid/internal/genlog"
	"github.com/weiawesome/genguid/internal/observer"
)

// Observer keys.
const (
	ObserverCounter = "counter"
	ObserverAudit   = "audit"
	ObserverStdout  = "stdout"
)

// GeneratorConstructor builds the identifier source behind a factory.
type GeneratorConstructor func() generator.Generator

// LogConstructor opens a generation log.
type LogConstructor func() (genlog.Log, error)

// ObserverEnv carries the shared components an observer may depend on.
type ObserverEnv struct {
	Counter   *counter.Counter
	Formatter *formatter.Formatter
	Out       io.Writer
}

// ObserverConstructor builds an observer.
type ObserverConstructor func(env ObserverEnv) (factory.Observer, error)

// Registry maps configuration keys to component constructors.
type Registry struct {
	generators map[string]GeneratorConstructor
	stages     *formatter.Registry
	logs       map[string]LogConstructor
	observers  map[string]ObserverConstructor
}

// NewRegistry creates a registry using stages for formatter descriptors.
func NewRegistry(stages *formatter.Registry) *Registry {
	return &Registry{
		generators: make(map[string]GeneratorConstructor),
		stages:     stages,
		logs:       make(map[string]LogConstructor),
		observers:  make(map[string]ObserverConstructor),
	}
}

// DefaultRegistry installs every built-in component. Log constructors
// resolve their files against cfg.
func DefaultRegistry(cfg *config.Config) *Registry {
	r := NewRegistry(formatter.DefaultRegistry())

	for name, ctor := range generator.Builtin() {
		_ = r.RegisterFactory(name, GeneratorConstructor(ctor))
	}

	_ = r.RegisterGenerationLog(config.DriverJSONFile, func() (genlog.Log, error) {
		return genlog.NewJSONFileLog(cfg.JSONLogPath())
	})
	_ = r.RegisterGenerationLog(config.DriverSQLite, func() (genlog.Log, error) {
		return genlog.NewSQLiteLog(cfg.SQLitePath())
	})
	_ = r.RegisterGenerationLog(config.DriverMemory, func() (genlog.Log, error) {
		return genlog.NewMemoryLog(), nil
	})

	_ = r.RegisterObserver(ObserverCounter, func(env ObserverEnv) (factory.Observer, error) {
		if env.Counter == nil {
			return nil, fmt.Errorf("counter is not configured")
		}
		return env.Counter, nil
	})
	_ = r.RegisterObserver(ObserverAudit, func(ObserverEnv) (factory.Observer, error) {
		return observer.NewAudit(), nil
	})
	_ = r.RegisterObserver(ObserverStdout, func(env ObserverEnv) (factory.Observer, error) {
		if env.Out == nil || env.Formatter == nil {
			return nil, fmt.Errorf("stdout writer needs an output and a formatter")
		}
		return observer.NewWriter(env.Out, env.Formatter), nil
	})

	return r
}

func (r *Registry) RegisterFactory(key string, ctor GeneratorConstructor) error {
	return register(r.generators, "factory", key, ctor)
}

func (r *Registry) RegisterGenerationLog(key string, ctor LogConstructor) error {
	return register(r.logs, "generation log", key, ctor)
}

func (r *Registry) RegisterObserver(key string, ctor ObserverConstructor) error {
	return register(r.observers, "observer", key, ctor)
}

// Stages returns the formatter stage registry.
func (r *Registry) Stages() *formatter.Registry { return r.stages }

func (r *Registry) FactoryKeys() []string       { return keys(r.generators) }
func (r *Registry) GenerationLogKeys() []string { return keys(r.logs) }
func (r *Registry) ObserverKeys() []string      { return keys(r.observers) }

func (r *Registry) HasFactory(key string) bool {
	_, ok := r.generators[key]
	return ok
}

func (r *Registry) HasGenerationLog(key string) bool {
	_, ok := r.logs[key]
	return ok
}

func (r *Registry) HasObserver(key string) bool {
	_, ok := r.observers[key]
	return ok
}

// HasStage reports whether desc names a registered formatter stage.
func (r *Registry) HasStage(desc string) bool {
	_, ok := r.stages.Lookup(formatter.ParseSpec(desc).Name)
	return ok
}

func register[T any](m map[string]T, kind, key string, ctor T) error {
	if key == "" {
		return fmt.Errorf("%w: empty %s key", ErrInvalidArgument, kind)
	}
	if _, ok := m[key]; ok {
		return fmt.Errorf("%w: %s %q already registered", ErrInvalidArgument, kind, key)
	}
	m[key] = ctor
	return nil
}

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
