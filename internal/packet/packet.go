// Package packet defines the value recorded for every generated identifier.
package packet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidSequence is returned for sequence numbers below 1.
	ErrInvalidSequence = errors.New("sequence number must be greater than 0")
	// ErrNilValue is returned when the identifier is the all-zero UUID.
	ErrNilValue = errors.New("identifier has not been initialised")
)

// TimestampPrecision is the resolution timestamps are stored with.
const TimestampPrecision = time.Millisecond

// Packet is a generated identifier together with its sequence number and
// generation time. The zero value is Null.
type Packet struct {
	SequenceNumber int64
	Value          uuid.UUID
	Timestamp      time.Time
}

// Null represents the absence of a packet.
var Null = Packet{}

// New validates and builds a packet. The timestamp is normalised to UTC at
// TimestampPrecision so that a packet survives a round trip through any log.
func New(sequenceNumber int64, value uuid.UUID, timestamp time.Time) (Packet, error) {
	if sequenceNumber < 1 {
		return Null, fmt.Errorf("%w: got %d", ErrInvalidSequence, sequenceNumber)
	}
	if value == uuid.Nil {
		return Null, ErrNilValue
	}
	return Packet{
		SequenceNumber: sequenceNumber,
		Value:          value,
		Timestamp:      Normalize(timestamp),
	}, nil
}

// Normalize converts t to UTC and truncates it to TimestampPrecision.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

// IsNull reports whether p is the null packet.
func (p Packet) IsNull() bool {
	return p.SequenceNumber == 0 && p.Value == uuid.Nil && p.Timestamp.IsZero()
}

// Equal reports structural equality over all three fields. Timestamps are
// compared as instants, so location does not matter.
func (p Packet) Equal(o Packet) bool {
	return p.SequenceNumber == o.SequenceNumber &&
		p.Value == o.Value &&
		p.Timestamp.Equal(o.Timestamp)
}

func (p Packet) String() string {
	if p.IsNull() {
		return "<null>"
	}
	return fmt.Sprintf("#%d %s %s", p.SequenceNumber, p.Value, p.Timestamp.Format(time.RFC3339Nano))
}
