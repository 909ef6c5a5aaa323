package generator

import (
	"fmt"

	gofrs "github.com/gofrs/uuid/v5"
	"github.com/google/uuid"
)

// UUIDGenerator generates random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Name() string { return NameStandard }

func (g *UUIDGenerator) Generate() (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate UUID: %w", err)
	}
	return checkNil(id)
}

// TimeOrderedGenerator generates version 7 UUIDs, which lead with a Unix
// millisecond timestamp and therefore sort by generation time.
type TimeOrderedGenerator struct{}

// NewTimeOrderedGenerator creates a new TimeOrderedGenerator.
func NewTimeOrderedGenerator() *TimeOrderedGenerator {
	return &TimeOrderedGenerator{}
}

func (g *TimeOrderedGenerator) Name() string { return NameTimeOrdered }

func (g *TimeOrderedGenerator) Generate() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate UUIDv7: %w", err)
	}
	return checkNil(id)
}

// ReorderedGenerator generates version 6 UUIDs: the version 1 layout with the
// timestamp fields reordered most significant first.
type ReorderedGenerator struct {
	gen gofrs.Generator
}

// NewReorderedGenerator creates a new ReorderedGenerator.
func NewReorderedGenerator() *ReorderedGenerator {
	return &ReorderedGenerator{gen: gofrs.NewGen()}
}

func (g *ReorderedGenerator) Name() string { return NameReordered }

func (g *ReorderedGenerator) Generate() (uuid.UUID, error) {
	id, err := g.gen.NewV6()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate UUIDv6: %w", err)
	}
	return checkNil(uuid.UUID(id))
}
