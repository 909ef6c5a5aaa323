package genlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/weiawesome/genguid/internal/packet"
	"github.com/weiawesome/genguid/pkg/log"
)

const tailBlock = 512

// JSONFileLog stores packets as a JSON array in a single text file, one
// element per line:
//
//	[
//	{"n":1,"t":"2024-01-01T00:00:00.000Z","g":"..."},
//	{"n":2,"t":"2024-01-01T00:00:01.000Z","g":"..."}
//	]
//
// Appends rewrite only the trailing bytes of the file. Only one process may
// write to a given file.
type JSONFileLog struct {
	path string

	mu         sync.Mutex
	cache      map[int64]packet.Packet
	latest     packet.Packet
	parsedSize int64 // file size at the last parse; -1 forces a reparse
}

// NewJSONFileLog opens the log at path, creating the directory and an empty
// array if the file does not exist yet.
func NewJSONFileLog(path string) (*JSONFileLog, error) {
	if path == "" {
		return nil, fmt.Errorf("json log: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("json log: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case err == nil:
		_, werr := f.WriteString("[\n]")
		cerr := f.Close()
		if werr != nil {
			return nil, fmt.Errorf("json log: initialise %s: %w", path, werr)
		}
		if cerr != nil {
			return nil, fmt.Errorf("json log: initialise %s: %w", path, cerr)
		}
	case errors.Is(err, os.ErrExist):
	default:
		return nil, fmt.Errorf("json log: open %s: %w", path, err)
	}

	return &JSONFileLog{path: path, parsedSize: -1}, nil
}

// Path returns the file backing the log.
func (l *JSONFileLog) Path() string { return l.path }

// Append adds p as the last array element. The trailing "]" is located
// from the end of the file and rewritten after the new element. A file
// whose close marker was lost after a complete element is repaired; any
// other unexpected tail is reported as ErrCorruptStore.
func (l *JSONFileLog) Append(ctx context.Context, p packet.Packet) error {
	if p.IsNull() {
		return fmt.Errorf("append: null packet")
	}
	data, err := json.Marshal(NewEntry(p))
	if err != nil {
		return fmt.Errorf("append: encode entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("append: open %s: %w", l.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("append: stat %s: %w", l.path, err)
	}
	sizeBefore := info.Size()

	offset, lead, err := l.appendPoint(ctx, f, sizeBefore)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(lead)
	buf.Write(data)
	buf.WriteString("\n]")

	if _, err := f.WriteAt(buf.Bytes(), offset); err != nil {
		return fmt.Errorf("append: write %s: %w", l.path, err)
	}
	sizeAfter := offset + int64(buf.Len())
	if err := f.Truncate(sizeAfter); err != nil {
		return fmt.Errorf("append: truncate %s: %w", l.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("append: sync %s: %w", l.path, err)
	}

	if l.cache != nil && l.parsedSize == sizeBefore {
		l.cache[p.SequenceNumber] = p
		if p.SequenceNumber >= l.latest.SequenceNumber {
			l.latest = p
		}
		l.parsedSize = sizeAfter
	} else {
		l.parsedSize = -1
	}
	return nil
}

// appendPoint decides where the next element starts and what has to be
// written before it.
func (l *JSONFileLog) appendPoint(ctx context.Context, f *os.File, size int64) (int64, string, error) {
	pos, b, err := lastNonSpace(f, size)
	if err != nil {
		return 0, "", fmt.Errorf("append: read %s: %w", l.path, err)
	}

	switch {
	case pos < 0:
		return 0, "[\n", nil
	case b == ']':
		prev, pb, err := lastNonSpace(f, pos)
		if err != nil {
			return 0, "", fmt.Errorf("append: read %s: %w", l.path, err)
		}
		switch {
		case prev >= 0 && pb == '[':
			return prev + 1, "\n", nil
		case prev >= 0 && pb == '}':
			return prev + 1, ",\n", nil
		}
		return 0, "", corrupt(l.path, fmt.Errorf("unexpected content before close marker at offset %d", pos))
	case b == '}':
		logger := log.Component(ctx, "genlog")
		logger.Warn().Str(log.FieldPath, l.path).Msg("close marker missing, repairing on append")
		return pos + 1, ",\n", nil
	case b == '[' || b == ',':
		return pos + 1, "\n", nil
	}
	return 0, "", corrupt(l.path, fmt.Errorf("unexpected byte %q at offset %d", b, pos))
}

// Fetch returns the packet with the given sequence number. A cache miss
// reparses the whole file.
func (l *JSONFileLog) Fetch(_ context.Context, seq int64) (packet.Packet, error) {
	if seq < 1 {
		return packet.Null, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.cache[seq]; ok {
		return p, nil
	}
	if err := l.reload(); err != nil {
		return packet.Null, err
	}
	return l.cache[seq], nil
}

// Latest returns the packet with the highest sequence number. The file is
// reparsed when its size changed since the last parse.
func (l *JSONFileLog) Latest(context.Context) (packet.Packet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if err != nil {
		return packet.Null, fmt.Errorf("latest: stat %s: %w", l.path, err)
	}
	if l.cache == nil || info.Size() != l.parsedSize {
		if err := l.reload(); err != nil {
			return packet.Null, err
		}
	}
	return l.latest, nil
}

func (l *JSONFileLog) NotifyOfGeneratedGuid(ctx context.Context, p packet.Packet) error {
	return l.Append(ctx, p)
}

func (l *JSONFileLog) Close() error { return nil }

// reload parses the whole file into the cache. Must be called with l.mu held.
func (l *JSONFileLog) reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", l.path, err)
	}

	packets, err := decodeEntries(data)
	if err != nil {
		return corrupt(l.path, err)
	}

	cache := make(map[int64]packet.Packet, len(packets))
	latest := packet.Null
	for _, p := range packets {
		cache[p.SequenceNumber] = p
		if p.SequenceNumber >= latest.SequenceNumber {
			latest = p
		}
	}

	l.cache = cache
	l.latest = latest
	l.parsedSize = int64(len(data))
	return nil
}

func decodeEntries(data []byte) ([]packet.Packet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	packets := make([]packet.Packet, 0, len(entries))
	for _, e := range entries {
		p, err := e.Packet()
		if err != nil {
			return nil, err
		}
		packets = append(packets, p)
	}
	return packets, nil
}

// lastNonSpace scans backwards from end for the last non-whitespace byte.
// It returns -1 when there is none.
func lastNonSpace(r io.ReaderAt, end int64) (int64, byte, error) {
	buf := make([]byte, tailBlock)
	for end > 0 {
		start := end - tailBlock
		if start < 0 {
			start = 0
		}
		chunk := buf[:end-start]
		if _, err := r.ReadAt(chunk, start); err != nil && !errors.Is(err, io.EOF) {
			return -1, 0, err
		}
		for i := len(chunk) - 1; i >= 0; i-- {
			if !isSpace(chunk[i]) {
				return start + int64(i), chunk[i], nil
			}
		}
		end = start
	}
	return -1, 0, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
