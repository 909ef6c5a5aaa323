package genlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLog(t *testing.T) (*JSONFileLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "log.json")
	l, err := NewJSONFileLog(path)
	require.NoError(t, err)
	return l, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewJSONFileLog_CreatesContainer(t *testing.T) {
	_, path := newJSONLog(t)
	assert.Equal(t, "[\n]", readFile(t, path))
}

func TestNewJSONFileLog_KeepsExistingFile(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)
	require.NoError(t, l.Append(ctx, mustPacket(t, 1)))
	before := readFile(t, path)

	_, err := NewJSONFileLog(path)
	require.NoError(t, err)
	assert.Equal(t, before, readFile(t, path))
}

func TestJSONFileLog_FileLayout(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)

	p1, p2 := mustPacket(t, 1), mustPacket(t, 2)
	require.NoError(t, l.Append(ctx, p1))
	require.NoError(t, l.Append(ctx, p2))

	want := "[\n" +
		`{"n":1,"t":"2024-03-01T12:30:46.123Z","g":"` + p1.Value.String() + `"},` + "\n" +
		`{"n":2,"t":"2024-03-01T12:30:47.123Z","g":"` + p2.Value.String() + `"}` + "\n" +
		"]"
	assert.Equal(t, want, readFile(t, path))
}

func TestJSONFileLog_RestoreFromDisk(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)
	for seq := int64(1); seq <= 3; seq++ {
		require.NoError(t, l.Append(ctx, mustPacket(t, seq)))
	}
	want, err := l.Fetch(ctx, 2)
	require.NoError(t, err)

	reopened, err := NewJSONFileLog(path)
	require.NoError(t, err)

	got, err := reopened.Fetch(ctx, 2)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	latest, err := reopened.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.SequenceNumber)
}

func TestJSONFileLog_LatestSeesOtherWriter(t *testing.T) {
	ctx := context.Background()
	reader, path := newJSONLog(t)
	require.NoError(t, reader.Append(ctx, mustPacket(t, 1)))

	latest, err := reader.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest.SequenceNumber)

	writer, err := NewJSONFileLog(path)
	require.NoError(t, err)
	require.NoError(t, writer.Append(ctx, mustPacket(t, 2)))

	latest, err = reader.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.SequenceNumber)
}

func TestJSONFileLog_RepairsMissingCloseMarker(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)
	require.NoError(t, l.Append(ctx, mustPacket(t, 1)))
	require.NoError(t, l.Append(ctx, mustPacket(t, 2)))

	content := readFile(t, path)
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSuffix(content, "\n]")), 0o644))

	damaged, err := NewJSONFileLog(path)
	require.NoError(t, err)

	_, err = damaged.Latest(ctx)
	assert.ErrorIs(t, err, ErrCorruptStore)

	require.NoError(t, damaged.Append(ctx, mustPacket(t, 3)))

	latest, err := damaged.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.SequenceNumber)

	first, err := damaged.Fetch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.SequenceNumber)
}

func TestJSONFileLog_TruncatedEntryIsCorrupt(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)
	require.NoError(t, l.Append(ctx, mustPacket(t, 1)))
	require.NoError(t, l.Append(ctx, mustPacket(t, 2)))

	content := readFile(t, path)
	require.NoError(t, os.WriteFile(path, []byte(content[:len(content)-12]), 0o644))

	damaged, err := NewJSONFileLog(path)
	require.NoError(t, err)

	_, err = damaged.Fetch(ctx, 1)
	assert.ErrorIs(t, err, ErrCorruptStore)

	_, err = damaged.Latest(ctx)
	assert.ErrorIs(t, err, ErrCorruptStore)

	err = damaged.Append(ctx, mustPacket(t, 3))
	assert.ErrorIs(t, err, ErrCorruptStore)
}

func TestJSONFileLog_EmptyFileGetsContainer(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "log.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	l, err := NewJSONFileLog(path)
	require.NoError(t, err)

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsNull())

	require.NoError(t, l.Append(ctx, mustPacket(t, 1)))
	assert.True(t, strings.HasPrefix(readFile(t, path), "[\n{"))

	latest, err = l.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest.SequenceNumber)
}

func TestJSONFileLog_LongTail(t *testing.T) {
	ctx := context.Background()
	l, path := newJSONLog(t)
	require.NoError(t, l.Append(ctx, mustPacket(t, 1)))

	content := readFile(t, path)
	padded := content + strings.Repeat(" \n", tailBlock)
	require.NoError(t, os.WriteFile(path, []byte(padded), 0o644))

	require.NoError(t, l.Append(ctx, mustPacket(t, 2)))
	assert.True(t, strings.HasSuffix(readFile(t, path), "\"}\n]"))

	latest, err := l.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.SequenceNumber)
}
