package generator

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULIDs (48-bit millisecond timestamp followed by
// 80 bits of entropy) and exposes them as 128-bit identifiers.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDGenerator creates a new ULIDGenerator. IDs generated within the same
// millisecond are strictly increasing.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULIDGenerator) Name() string { return NameULID }

func (g *ULIDGenerator) Generate() (uuid.UUID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate ULID: %w", err)
	}
	return checkNil(uuid.UUID(id))
}
