// Package factory generates sequence-numbered identifier packets and
// dispatches them to registered observers.
package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weiawesome/genguid/internal/generator"
	"github.com/weiawesome/genguid/internal/packet"
	"github.com/weiawesome/genguid/pkg/log"
)

// LatestReader is the part of a generation log Restore needs.
type LatestReader interface {
	Latest(ctx context.Context) (packet.Packet, error)
}

// Factory produces packets from a Generator. The zero value is not usable;
// construct with New.
type Factory struct {
	mu         sync.Mutex
	gen        generator.Generator
	dispatcher *Dispatcher
	now        func() time.Time
	current    packet.Packet
}

// Option configures a Factory.
type Option func(*Factory)

// WithClock overrides the time source used to stamp packets.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) { f.now = now }
}

// WithDispatcher shares an existing dispatcher.
func WithDispatcher(d *Dispatcher) Option {
	return func(f *Factory) { f.dispatcher = d }
}

// New creates a factory drawing identifiers from gen.
func New(gen generator.Generator, opts ...Option) *Factory {
	f := &Factory{
		gen:        gen,
		dispatcher: NewDispatcher(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GeneratorName returns the key of the underlying generator.
func (f *Factory) GeneratorName() string {
	return f.gen.Name()
}

// CurrentIdentifier returns the last generated or restored packet, or
// packet.Null.
func (f *Factory) CurrentIdentifier() packet.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// GenerateNext creates the next packet, makes it current and notifies every
// observer while still holding the factory lock, so observers see packets in
// sequence order. Observers must not call back into the factory.
//
// When notification fails the packet is still returned and stays current;
// the error joins every observer failure.
func (f *Factory) GenerateNext(ctx context.Context) (packet.Packet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, err := f.gen.Generate()
	if err != nil {
		return packet.Null, fmt.Errorf("generate identifier: %w", err)
	}

	p, err := packet.New(f.current.SequenceNumber+1, id, f.now())
	if err != nil {
		return packet.Null, err
	}
	f.current = p

	l := log.Ctx(ctx)
	l.Debug().
		Int64(log.FieldSequence, p.SequenceNumber).
		Str(log.FieldGUID, p.Value.String()).
		Str(log.FieldGenerator, f.gen.Name()).
		Msg("identifier generated")

	if err := f.dispatcher.Notify(ctx, p); err != nil {
		return p, fmt.Errorf("notify observers of #%d: %w", p.SequenceNumber, err)
	}
	return p, nil
}

// Restore makes the most recent logged packet current. Observers are not
// notified.
func (f *Factory) Restore(ctx context.Context, r LatestReader) error {
	if r == nil {
		return fmt.Errorf("restore: reader cannot be nil")
	}
	latest, err := r.Latest(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	f.mu.Lock()
	f.current = latest
	f.mu.Unlock()

	l := log.Ctx(ctx)
	l.Debug().Int64(log.FieldSequence, latest.SequenceNumber).Msg("factory restored")
	return nil
}

// RegisterObserver subscribes o to generation events.
func (f *Factory) RegisterObserver(o Observer) error {
	return f.dispatcher.Register(o)
}

// RemoveObserver unsubscribes o. Unknown observers are ignored.
func (f *Factory) RemoveObserver(o Observer) error {
	return f.dispatcher.Remove(o)
}

// Observers returns the registered observers in notification order.
func (f *Factory) Observers() []Observer {
	return f.dispatcher.Observers()
}
