package observer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/weiawesome/genguid/internal/packet"
)

// Formatter renders an identifier for display.
type Formatter interface {
	Format(id uuid.UUID) string
}

// Writer prints every generated identifier, formatted, on its own line.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
	f   Formatter
}

// NewWriter creates a Writer that formats with f and prints to out.
func NewWriter(out io.Writer, f Formatter) *Writer {
	return &Writer{out: out, f: f}
}

func (w *Writer) NotifyOfGeneratedGuid(_ context.Context, p packet.Packet) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.out, w.f.Format(p.Value)); err != nil {
		return fmt.Errorf("write identifier %d: %w", p.SequenceNumber, err)
	}
	return nil
}
