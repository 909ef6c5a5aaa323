// Package genlog stores the history of generated packets, addressable by
// sequence number.
package genlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weiawesome/genguid/internal/packet"
)

// ErrCorruptStore wraps any failure to parse a persisted log.
var ErrCorruptStore = errors.New("generation log is corrupt")

// TimestampLayout is the persisted timestamp format: UTC, millisecond
// precision, literal Z suffix.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Reader fetches previously generated packets.
type Reader interface {
	// Fetch returns the packet with the given sequence number, or
	// packet.Null when there is none.
	Fetch(ctx context.Context, sequenceNumber int64) (packet.Packet, error)
	// Latest returns the packet with the highest sequence number, or
	// packet.Null when the log is empty.
	Latest(ctx context.Context) (packet.Packet, error)
}

// Writer appends packets.
type Writer interface {
	Append(ctx context.Context, p packet.Packet) error
}

// Log is a generation log. It is also a factory observer: each notification
// appends the packet.
type Log interface {
	Reader
	Writer
	NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error
	Close() error
}

// Entry is the persisted form of a packet.
type Entry struct {
	N int64  `json:"n" yaml:"n"`
	T string `json:"t" yaml:"t"`
	G string `json:"g" yaml:"g"`
}

// NewEntry converts a packet to its persisted form.
func NewEntry(p packet.Packet) Entry {
	return Entry{
		N: p.SequenceNumber,
		T: p.Timestamp.UTC().Format(TimestampLayout),
		G: p.Value.String(),
	}
}

// Packet converts an entry back, validating every field.
func (e Entry) Packet() (packet.Packet, error) {
	ts, err := time.Parse(TimestampLayout, e.T)
	if err != nil {
		return packet.Null, fmt.Errorf("entry %d: timestamp: %w", e.N, err)
	}
	id, err := uuid.Parse(e.G)
	if err != nil {
		return packet.Null, fmt.Errorf("entry %d: identifier: %w", e.N, err)
	}
	p, err := packet.New(e.N, id, ts)
	if err != nil {
		return packet.Null, fmt.Errorf("entry %d: %w", e.N, err)
	}
	return p, nil
}

func corrupt(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCorruptStore, source, err)
}

// Range returns up to limit packets walking backwards from sequence number
// from (inclusive). Missing sequence numbers are skipped. A from past the
// latest entry starts at the latest entry.
func Range(ctx context.Context, r Reader, from int64, limit int) ([]packet.Packet, error) {
	if limit <= 0 {
		return nil, nil
	}
	latest, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest.IsNull() {
		return nil, nil
	}
	if from > latest.SequenceNumber {
		from = latest.SequenceNumber
	}

	var out []packet.Packet
	for seq := from; seq >= 1 && len(out) < limit; seq-- {
		p, err := r.Fetch(ctx, seq)
		if err != nil {
			return nil, err
		}
		if !p.IsNull() {
			out = append(out, p)
		}
	}
	return out, nil
}
