// Package settings assembles the factory, formatter, generation log and
// observers from configuration and the persisted user selection, and lets
// the selection be changed at runtime.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/weiawesome/genguid/internal/config"
	"github.com/weiawesome/genguid/internal/counter"
	"github.com/weiawesome/genguid/internal/factory"
	"github.com/weiawesome/genguid/internal/formatter"
	"github.com/weiawesome/genguid/internal/genlog"
	"github.com/weiawesome/genguid/pkg/log"
	"github.com/weiawesome/genguid/pkg/storage"
)

var (
	// ErrInvalidArgument is returned for empty or unregistered keys.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownKey is returned when a configured key has no constructor.
	ErrUnknownKey = errors.New("unknown component key")
)

// Section names used in ConfigError.
const (
	SectionFactory       = "factory"
	SectionFormatters    = "formatters"
	SectionGenerationLog = "generation log"
	SectionObservers     = "observers"
)

// ConfigError reports a section of the selection that could not be built.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("misconfiguration in %s section: %v", e.Section, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Option configures a Provider.
type Option func(*Provider)

// WithCountStore replaces the count.json store in the data directory.
func WithCountStore(s counter.Store) Option {
	return func(p *Provider) { p.countStore = s }
}

// WithOutput sets the writer used by the stdout observer.
func WithOutput(w io.Writer) Option {
	return func(p *Provider) { p.out = w }
}

// WithClock overrides the time source of every factory built.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// Provider owns the active components. Every mutator rebuilds them from the
// new selection and swaps them in only when the whole build succeeds.
type Provider struct {
	mu sync.Mutex

	registry   *Registry
	store      Store
	countStore counter.Store
	out        io.Writer
	now        func() time.Time

	defaults  Selection
	selection Selection
	counter   *counter.Counter
	active    *components
}

type components struct {
	factory   *factory.Factory
	formatter *formatter.Formatter
	log       genlog.Log
	logKey    string
}

// New builds the components from the config defaults overlaid by the
// selection saved in store. A section that cannot be built is reported as a
// *ConfigError.
func New(ctx context.Context, cfg *config.Config, registry *Registry, store Store, opts ...Option) (*Provider, error) {
	p := &Provider{
		registry: registry,
		store:    store,
		now:      time.Now,
		defaults: Selection{
			Factory:       cfg.Factory,
			Formatters:    cfg.Formatters,
			GenerationLog: cfg.GenerationLog.Driver,
			Observers:     cfg.Observers,
		}.clone(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.countStore == nil {
		s, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: cfg.DataDir})
		if err != nil {
			return nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		p.countStore = counter.NewJSONFileStore(s)
	}
	p.counter = counter.New(p.countStore)

	sel := p.defaults.clone()
	saved, ok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		sel = sel.overlay(saved)
	}

	active, err := p.build(ctx, sel)
	if err != nil {
		return nil, err
	}
	p.selection = sel
	p.active = active

	l := log.Component(ctx, "settings")
	l.Debug().Interface(log.FieldSelection, sel).Bool("user_selection", ok).Msg("settings loaded")
	return p, nil
}

// build constructs every component for sel. The generation log is reused
// when its key does not change.
func (p *Provider) build(ctx context.Context, sel Selection) (*components, error) {
	next := &components{logKey: sel.GenerationLog}

	f, err := formatter.Build(p.registry.Stages(), sel.Formatters)
	if err != nil {
		return nil, &ConfigError{Section: SectionFormatters, Err: err}
	}
	next.formatter = f

	newGen, ok := p.registry.generators[sel.Factory]
	if !ok {
		return nil, &ConfigError{Section: SectionFactory, Err: fmt.Errorf("%w: %q", ErrUnknownKey, sel.Factory)}
	}

	if p.active != nil && p.active.logKey == sel.GenerationLog {
		next.log = p.active.log
	} else {
		openLog, ok := p.registry.logs[sel.GenerationLog]
		if !ok {
			return nil, &ConfigError{Section: SectionGenerationLog, Err: fmt.Errorf("%w: %q", ErrUnknownKey, sel.GenerationLog)}
		}
		l, err := openLog()
		if err != nil {
			return nil, &ConfigError{Section: SectionGenerationLog, Err: err}
		}
		next.log = l
	}

	fail := func(section string, err error) (*components, error) {
		p.discard(next)
		return nil, &ConfigError{Section: section, Err: err}
	}

	next.factory = factory.New(newGen(), factory.WithClock(p.now))

	// The log is always the first observer.
	if err := next.factory.RegisterObserver(next.log); err != nil {
		return fail(SectionGenerationLog, err)
	}

	env := ObserverEnv{Counter: p.counter, Formatter: next.formatter, Out: p.out}
	for _, key := range sel.Observers {
		newObserver, ok := p.registry.observers[key]
		if !ok {
			return fail(SectionObservers, fmt.Errorf("%w: %q", ErrUnknownKey, key))
		}
		o, err := newObserver(env)
		if err != nil {
			return fail(SectionObservers, fmt.Errorf("observer %q: %w", key, err))
		}
		if err := next.factory.RegisterObserver(o); err != nil {
			return fail(SectionObservers, fmt.Errorf("observer %q: %w", key, err))
		}
	}

	if err := next.factory.Restore(ctx, next.log); err != nil {
		return fail(SectionGenerationLog, err)
	}
	return next, nil
}

// discard closes the log of a build that will not be used, unless it is
// shared with the active components.
func (p *Provider) discard(c *components) {
	if c.log == nil || (p.active != nil && c.log == p.active.log) {
		return
	}
	_ = c.log.Close()
}

// apply builds sel, persists it and swaps it in. Must be called with p.mu
// held.
func (p *Provider) apply(ctx context.Context, sel Selection, persist func(Selection) error) error {
	next, err := p.build(ctx, sel)
	if err != nil {
		return err
	}
	if err := persist(sel); err != nil {
		p.discard(next)
		return err
	}

	prev := p.active
	p.active = next
	p.selection = sel
	if prev != nil && prev.log != next.log {
		if err := prev.log.Close(); err != nil {
			l := log.Component(ctx, "settings")
			l.Warn().Err(err).Str("generation_log", prev.logKey).Msg("failed to close previous generation log")
		}
	}

	l := log.Component(ctx, "settings")
	l.Info().Interface(log.FieldSelection, sel).Msg("settings updated")
	return nil
}

func (p *Provider) mutate(ctx context.Context, change func(sel *Selection) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sel := p.selection.clone()
	if err := change(&sel); err != nil {
		return err
	}
	return p.apply(ctx, sel, p.store.Save)
}

// RegisterFactory selects the identifier source registered under key.
func (p *Provider) RegisterFactory(ctx context.Context, key string) error {
	if key == "" || !p.registry.HasFactory(key) {
		return fmt.Errorf("%w: factory %q", ErrInvalidArgument, key)
	}
	return p.mutate(ctx, func(sel *Selection) error {
		sel.Factory = key
		return nil
	})
}

// RegisterFormatterStage appends a stage descriptor to the chain.
func (p *Provider) RegisterFormatterStage(ctx context.Context, desc string) error {
	if desc == "" || !p.registry.HasStage(desc) {
		return fmt.Errorf("%w: formatter stage %q", ErrInvalidArgument, desc)
	}
	spec := formatter.ParseSpec(desc).String()
	return p.mutate(ctx, func(sel *Selection) error {
		sel.Formatters = append(sel.Formatters, spec)
		return nil
	})
}

// DeregisterFormatterStage removes every occurrence of desc from the chain.
// Removing a stage that is not in the chain is a no-op. A removal that
// leaves an invalid chain is rejected and the current chain is kept.
func (p *Provider) DeregisterFormatterStage(ctx context.Context, desc string) error {
	if desc == "" {
		return fmt.Errorf("%w: empty formatter stage", ErrInvalidArgument)
	}
	target := formatter.ParseSpec(desc).String()

	p.mu.Lock()
	defer p.mu.Unlock()

	sel := p.selection.clone()
	sel.Formatters = slices.DeleteFunc(sel.Formatters, func(s string) bool {
		return formatter.ParseSpec(s).String() == target
	})
	if len(sel.Formatters) == len(p.selection.Formatters) {
		return nil
	}
	return p.apply(ctx, sel, p.store.Save)
}

// RegisterGenerationLog switches the generation log and restores the
// factory from it.
func (p *Provider) RegisterGenerationLog(ctx context.Context, key string) error {
	if key == "" || !p.registry.HasGenerationLog(key) {
		return fmt.Errorf("%w: generation log %q", ErrInvalidArgument, key)
	}
	return p.mutate(ctx, func(sel *Selection) error {
		sel.GenerationLog = key
		return nil
	})
}

// RegisterObserver adds the observer registered under key.
func (p *Provider) RegisterObserver(ctx context.Context, key string) error {
	if key == "" || !p.registry.HasObserver(key) {
		return fmt.Errorf("%w: observer %q", ErrInvalidArgument, key)
	}
	return p.mutate(ctx, func(sel *Selection) error {
		if slices.Contains(sel.Observers, key) {
			return fmt.Errorf("observer %q: %w", key, factory.ErrAlreadySubscribed)
		}
		sel.Observers = append(sel.Observers, key)
		return nil
	})
}

// DeregisterObserver removes the observer registered under key. Removing an
// observer that is not selected is a no-op.
func (p *Provider) DeregisterObserver(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty observer key", ErrInvalidArgument)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.Contains(p.selection.Observers, key) {
		return nil
	}
	sel := p.selection.clone()
	sel.Observers = slices.DeleteFunc(sel.Observers, func(s string) bool { return s == key })
	return p.apply(ctx, sel, p.store.Save)
}

// Reset discards the user selection and reverts to the configured defaults.
func (p *Provider) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apply(ctx, p.defaults.clone(), func(Selection) error { return p.store.Clear() })
}

func (p *Provider) ReadFactory() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.Factory
}

func (p *Provider) ReadFormatterStages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.selection.Formatters)
}

func (p *Provider) ReadGenerationLog() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.GenerationLog
}

func (p *Provider) ReadObservers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.selection.Observers)
}

// Selection returns a copy of the active selection.
func (p *Provider) Selection() Selection {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selection.clone()
}

func (p *Provider) Factory() *factory.Factory {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.factory
}

func (p *Provider) Formatter() *formatter.Formatter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.formatter
}

func (p *Provider) GenerationLog() genlog.Log {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.log
}

func (p *Provider) Counter() *counter.Counter { return p.counter }

// Registry returns the component registry the provider builds from.
func (p *Provider) Registry() *Registry { return p.registry }

// Close releases the generation log.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return nil
	}
	return p.active.log.Close()
}
