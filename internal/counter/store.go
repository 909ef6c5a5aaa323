// Package counter keeps the running total of generated identifiers.
package counter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/weiawesome/genguid/pkg/storage"
)

// FileName is the key the count is stored under.
const FileName = "count.json"

var (
	// ErrNegativeCount is returned when writing a count below zero.
	ErrNegativeCount = errors.New("count cannot be negative")
	// ErrCorruptCount wraps a count file that does not hold a JSON integer.
	ErrCorruptCount = errors.New("count store is corrupt")
)

// Store persists a single non-negative count.
type Store interface {
	Read(ctx context.Context) (int64, error)
	Write(ctx context.Context, count int64) error
}

// JSONFileStore keeps the count as a JSON number in a file.
type JSONFileStore struct {
	storage storage.Storage
	key     string
}

// NewJSONFileStore stores the count under FileName in s.
func NewJSONFileStore(s storage.Storage) *JSONFileStore {
	return &JSONFileStore{storage: s, key: FileName}
}

// Read returns the stored count, or 0 when nothing has been stored yet.
func (s *JSONFileStore) Read(ctx context.Context) (int64, error) {
	rc, err := s.storage.Read(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, nil
	}

	var count int64
	if err := json.Unmarshal(data, &count); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorruptCount, s.key, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("%w: %s: %w", ErrCorruptCount, s.key, ErrNegativeCount)
	}
	return count, nil
}

// Write replaces the stored count.
func (s *JSONFileStore) Write(ctx context.Context, count int64) error {
	if count < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, count)
	}
	data := strconv.AppendInt(nil, count, 10)
	data = append(data, '\n')
	if err := s.storage.Write(ctx, s.key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	return nil
}

// MemoryStore keeps the count in memory.
type MemoryStore struct {
	count int64
}

func (s *MemoryStore) Read(context.Context) (int64, error) { return s.count, nil }

func (s *MemoryStore) Write(_ context.Context, count int64) error {
	if count < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, count)
	}
	s.count = count
	return nil
}
