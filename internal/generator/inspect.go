package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ParseResult holds what can be read back out of an identifier.
type ParseResult struct {
	ID           uuid.UUID
	Version      int
	Variant      string
	Layout       string    // generator key whose layout matches, if any
	Timestamp    time.Time // zero unless the layout embeds one
	HasTimestamp bool
}

// TrimText strips whitespace, brace and parenthesis wrappers, and any of
// the given prefix or suffix literals from s, in any nesting. Literals match
// case-insensitively.
func TrimText(s string, literals ...string) string {
	s = strings.TrimSpace(s)
	for stripped := true; stripped; {
		stripped = false
		if len(s) >= 2 && ((s[0] == '{' && s[len(s)-1] == '}') || (s[0] == '(' && s[len(s)-1] == ')')) {
			s = s[1 : len(s)-1]
			stripped = true
		}
		for _, lit := range literals {
			if lit == "" || len(s) <= len(lit) {
				continue
			}
			if strings.EqualFold(s[:len(lit)], lit) {
				s = s[len(lit):]
				stripped = true
			} else if strings.EqualFold(s[len(s)-len(lit):], lit) {
				s = s[:len(s)-len(lit)]
				stripped = true
			}
		}
	}
	return s
}

// ParseText parses the textual output of any built-in formatter chain: 32 or
// 36 hex digits, optionally wrapped in braces or parentheses, in any case, or
// the 26-character Crockford base32 form. Text added by prefix or suffix
// stages is only stripped when passed in literals.
func ParseText(s string, literals ...string) (uuid.UUID, error) {
	s = TrimText(s, literals...)

	if len(s) == ulid.EncodedSize {
		id, err := ulid.ParseStrict(strings.ToUpper(s))
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid identifier %q: %w", s, err)
		}
		return uuid.UUID(id), nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	return id, nil
}

// Inspect describes an identifier. Version 7 values carry a 48-bit Unix
// millisecond prefix, the same layout a ULID uses, so both are decoded
// through ulid.
func Inspect(id uuid.UUID) ParseResult {
	res := ParseResult{
		ID:      id,
		Version: int(id.Version()),
		Variant: variantName(id.Variant()),
	}

	if id.Variant() == uuid.RFC4122 {
		switch id.Version() {
		case 4:
			res.Layout = NameStandard
		case 6:
			res.Layout = NameReordered
			sec, nsec := id.Time().UnixTime()
			res.Timestamp = time.Unix(sec, nsec).UTC()
			res.HasTimestamp = true
		case 7:
			res.Layout = NameTimeOrdered
			res.Timestamp = ulid.Time(ulid.ULID(id).Time()).UTC()
			res.HasTimestamp = true
		}
	}

	return res
}

// InspectAsULID decodes the timestamp of an identifier produced by the ulid
// generator. The value carries no version bits, so the layout is an
// assumption the caller has to make.
func InspectAsULID(id uuid.UUID) ParseResult {
	res := Inspect(id)
	res.Layout = NameULID
	res.Timestamp = ulid.Time(ulid.ULID(id).Time()).UTC()
	res.HasTimestamp = true
	return res
}

func variantName(v uuid.Variant) string {
	switch v {
	case uuid.RFC4122:
		return "RFC4122"
	case uuid.Reserved:
		return "Reserved"
	case uuid.Microsoft:
		return "Microsoft"
	case uuid.Future:
		return "Future"
	default:
		return "Unknown"
	}
}
