package generator

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNilIdentifier is returned when a source produces the all-zero value.
var ErrNilIdentifier = errors.New("generator produced the nil identifier")

// Generator defines a source of 128-bit identifiers.
type Generator interface {
	Generate() (uuid.UUID, error)
	Name() string
}

// Keys of the built-in generators.
const (
	NameStandard    = "standard"
	NameTimeOrdered = "timeordered"
	NameReordered   = "reordered"
	NameULID        = "ulid"
)

// Builtin returns constructors for every built-in generator keyed by name.
func Builtin() map[string]func() Generator {
	return map[string]func() Generator{
		NameStandard:    func() Generator { return NewUUIDGenerator() },
		NameTimeOrdered: func() Generator { return NewTimeOrderedGenerator() },
		NameReordered:   func() Generator { return NewReorderedGenerator() },
		NameULID:        func() Generator { return NewULIDGenerator() },
	}
}

func checkNil(id uuid.UUID) (uuid.UUID, error) {
	if id == uuid.Nil {
		return uuid.Nil, ErrNilIdentifier
	}
	return id, nil
}
