package factory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/genguid/internal/generator"
	"github.com/weiawesome/genguid/internal/packet"
)

type recorder struct {
	mu      sync.Mutex
	packets []packet.Packet
	err     error
}

func (r *recorder) NotifyOfGeneratedGuid(_ context.Context, p packet.Packet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packets = append(r.packets, p)
	return r.err
}

type sequence struct {
	calls []string
}

type orderObserver struct {
	seq  *sequence
	name string
}

func (o *orderObserver) NotifyOfGeneratedGuid(context.Context, packet.Packet) error {
	o.seq.calls = append(o.seq.calls, o.name)
	return nil
}

type staticReader struct {
	p   packet.Packet
	err error
}

func (r staticReader) Latest(context.Context) (packet.Packet, error) { return r.p, r.err }

type brokenGenerator struct{}

func (brokenGenerator) Generate() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") }
func (brokenGenerator) Name() string { return "broken" }

var fixedNow = time.Date(2024, 2, 29, 23, 59, 59, 987654321, time.UTC)

func newTestFactory() *Factory {
	return New(generator.NewUUIDGenerator(), WithClock(func() time.Time { return fixedNow }))
}

func TestGenerateNext_SequenceAndUniqueness(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	assert.True(t, f.CurrentIdentifier().IsNull())

	const n = 200
	seen := make(map[uuid.UUID]struct{}, n)
	for i := int64(1); i <= n; i++ {
		p, err := f.GenerateNext(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, p.SequenceNumber)
		assert.True(t, p.Equal(f.CurrentIdentifier()))

		_, dup := seen[p.Value]
		require.False(t, dup)
		seen[p.Value] = struct{}{}
	}
}

func TestGenerateNext_StampsNormalizedTime(t *testing.T) {
	p, err := newTestFactory().GenerateNext(context.Background())
	require.NoError(t, err)
	assert.True(t, p.Timestamp.Equal(fixedNow.Truncate(time.Millisecond)))
}

func TestGenerateNext_NotifiesInRegistrationOrder(t *testing.T) {
	f := newTestFactory()
	seq := &sequence{}
	require.NoError(t, f.RegisterObserver(&orderObserver{seq: seq, name: "log"}))
	require.NoError(t, f.RegisterObserver(&orderObserver{seq: seq, name: "counter"}))
	require.NoError(t, f.RegisterObserver(&orderObserver{seq: seq, name: "audit"}))

	_, err := f.GenerateNext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"log", "counter", "audit"}, seq.calls)
}

func TestGenerateNext_FailingObserverDoesNotBlockOthers(t *testing.T) {
	f := newTestFactory()
	boom := errors.New("clipboard busy")
	failing := &recorder{err: boom}
	after := &recorder{}
	require.NoError(t, f.RegisterObserver(failing))
	require.NoError(t, f.RegisterObserver(after))

	p, err := f.GenerateNext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var nerr *NotifyError
	require.ErrorAs(t, err, &nerr)
	assert.Same(t, failing, nerr.Observer)

	assert.Equal(t, int64(1), p.SequenceNumber)
	assert.True(t, p.Equal(f.CurrentIdentifier()))
	require.Len(t, after.packets, 1)
	assert.True(t, after.packets[0].Equal(p))
}

func TestGenerateNext_GeneratorFailure(t *testing.T) {
	f := New(brokenGenerator{})
	p, err := f.GenerateNext(context.Background())
	assert.Error(t, err)
	assert.True(t, p.IsNull())
	assert.True(t, f.CurrentIdentifier().IsNull())
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory()
	obs := &recorder{}
	require.NoError(t, f.RegisterObserver(obs))

	latest, err := packet.New(41, uuid.New(), fixedNow)
	require.NoError(t, err)

	require.NoError(t, f.Restore(ctx, staticReader{p: latest}))
	require.NoError(t, f.Restore(ctx, staticReader{p: latest}))
	assert.True(t, latest.Equal(f.CurrentIdentifier()))
	assert.Empty(t, obs.packets, "restore must not notify")

	next, err := f.GenerateNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), next.SequenceNumber)
}

func TestRestore_EmptyLog(t *testing.T) {
	f := newTestFactory()
	require.NoError(t, f.Restore(context.Background(), staticReader{p: packet.Null}))
	assert.True(t, f.CurrentIdentifier().IsNull())
}

func TestRestore_Errors(t *testing.T) {
	f := newTestFactory()
	assert.Error(t, f.Restore(context.Background(), nil))

	readErr := errors.New("corrupt")
	err := f.Restore(context.Background(), staticReader{err: readErr})
	assert.ErrorIs(t, err, readErr)
}
