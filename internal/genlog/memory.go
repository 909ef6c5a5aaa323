package genlog

import (
	"context"
	"fmt"
	"sync"

	"github.com/weiawesome/genguid/internal/packet"
)

// MemoryLog keeps packets in memory only.
type MemoryLog struct {
	mu      sync.RWMutex
	packets map[int64]packet.Packet
	latest  packet.Packet
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{packets: make(map[int64]packet.Packet)}
}

func (l *MemoryLog) Append(_ context.Context, p packet.Packet) error {
	if p.IsNull() {
		return fmt.Errorf("append: null packet")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.packets[p.SequenceNumber]; ok {
		return fmt.Errorf("append: sequence number %d already logged", p.SequenceNumber)
	}
	l.packets[p.SequenceNumber] = p
	if p.SequenceNumber > l.latest.SequenceNumber {
		l.latest = p
	}
	return nil
}

func (l *MemoryLog) Fetch(_ context.Context, seq int64) (packet.Packet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.packets[seq], nil
}

func (l *MemoryLog) Latest(context.Context) (packet.Packet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest, nil
}

func (l *MemoryLog) NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error {
	return l.Append(ctx, p)
}

func (l *MemoryLog) Close() error { return nil }
