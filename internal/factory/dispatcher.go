package factory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/weiawesome/genguid/internal/packet"
)

var (
	ErrNilObserver          = errors.New("observer cannot be nil")
	ErrUncomparableObserver = errors.New("observer type is not comparable")
	ErrAlreadySubscribed    = errors.New("the specified observer is already subscribed")
)

// Observer is notified synchronously each time an identifier is generated.
type Observer interface {
	NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error
}

// Dispatcher keeps the ordered set of registered observers and fans packets
// out to them. Identity is interface equality, which for pointer observers
// is the pointer itself.
type Dispatcher struct {
	mu        sync.Mutex
	observers []Observer
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds o to the end of the notification order. Comparability is
// checked on the dynamic value, so a struct holding a slice behind an
// interface field is rejected.
func (d *Dispatcher) Register(o Observer) error {
	if o == nil {
		return ErrNilObserver
	}
	if !reflect.ValueOf(o).Comparable() {
		return fmt.Errorf("%w: %T", ErrUncomparableObserver, o)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.observers {
		if existing == o {
			return fmt.Errorf("%w: %T", ErrAlreadySubscribed, o)
		}
	}
	d.observers = append(d.observers, o)
	return nil
}

// Remove drops o. Removing an observer that is not registered is a no-op.
func (d *Dispatcher) Remove(o Observer) error {
	if o == nil {
		return ErrNilObserver
	}
	if !reflect.ValueOf(o).Comparable() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.observers {
		if existing == o {
			d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
			return nil
		}
	}
	return nil
}

// Observers returns a snapshot of the registered observers in order.
func (d *Dispatcher) Observers() []Observer {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Observer, len(d.observers))
	copy(out, d.observers)
	return out
}

// Notify calls every observer in registration order. A failing observer does
// not stop the ones after it; all failures are returned joined.
func (d *Dispatcher) Notify(ctx context.Context, p packet.Packet) error {
	var errs []error
	for _, o := range d.Observers() {
		if err := o.NotifyOfGeneratedGuid(ctx, p); err != nil {
			errs = append(errs, &NotifyError{Observer: o, Err: err})
		}
	}
	return errors.Join(errs...)
}

// NotifyError records which observer failed.
type NotifyError struct {
	Observer Observer
	Err      error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("observer %T: %v", e.Observer, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
