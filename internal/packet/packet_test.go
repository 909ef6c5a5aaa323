package packet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")

func TestNew_Validation(t *testing.T) {
	_, err := New(0, testID, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = New(-3, testID, time.Now())
	assert.ErrorIs(t, err, ErrInvalidSequence)

	_, err = New(1, uuid.Nil, time.Now())
	assert.ErrorIs(t, err, ErrNilValue)
}

func TestNew_NormalizesTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 9, 12, 30, 45, 123456789, loc)

	p, err := New(7, testID, ts)
	require.NoError(t, err)

	assert.Equal(t, time.UTC, p.Timestamp.Location())
	assert.Equal(t, 123000000, p.Timestamp.Nanosecond())
	assert.True(t, p.Timestamp.Equal(ts.Truncate(time.Millisecond)))
}

func TestNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.True(t, Packet{}.IsNull())
	assert.Equal(t, "<null>", Null.String())

	p, err := New(1, testID, time.Now())
	require.NoError(t, err)
	assert.False(t, p.IsNull())
}

func TestEqual(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := New(1, testID, ts)
	require.NoError(t, err)

	same := Packet{SequenceNumber: 1, Value: testID, Timestamp: ts.In(time.FixedZone("X", 3600))}
	assert.True(t, a.Equal(same))

	assert.False(t, a.Equal(Packet{SequenceNumber: 2, Value: testID, Timestamp: ts}))
	assert.False(t, a.Equal(Packet{SequenceNumber: 1, Value: uuid.New(), Timestamp: ts}))
	assert.False(t, a.Equal(Packet{SequenceNumber: 1, Value: testID, Timestamp: ts.Add(time.Millisecond)}))
	assert.False(t, a.Equal(Null))
}
