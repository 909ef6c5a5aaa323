package counter

import (
	"context"
	"sync"

	"github.com/weiawesome/genguid/internal/packet"
	"github.com/weiawesome/genguid/pkg/log"
)

// Counter counts generated identifiers. It is registered with the factory as
// an observer and is not reconciled with the generation log.
type Counter struct {
	mu    sync.Mutex
	store Store
}

// New creates a counter on top of store.
func New(store Store) *Counter {
	return &Counter{store: store}
}

// Count returns the number of identifiers generated so far.
func (c *Counter) Count(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Read(ctx)
}

// Increment adds one to the stored count and returns the new value.
func (c *Counter) Increment(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.store.Read(ctx)
	if err != nil {
		return 0, err
	}
	n++
	if err := c.store.Write(ctx, n); err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Counter) NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error {
	n, err := c.Increment(ctx)
	if err != nil {
		return err
	}
	logger := log.Component(ctx, "counter")
	logger.Debug().Int64(log.FieldSequence, p.SequenceNumber).Int64("count", n).Msg("count incremented")
	return nil
}
