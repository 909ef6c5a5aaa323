package formatter

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Names of the built-in stages.
const (
	StageCompact       = "compact"
	StageCrockford     = "crockford"
	StageHyphenated    = "hyphenated"
	StageUpperCase     = "uppercase"
	StageLowerCase     = "lowercase"
	StageBraced        = "braced"
	StageParenthesised = "parenthesised"
	StageSuffix        = "suffix"
	StagePrefix        = "prefix"
)

// hyphenOffsets are applied right to left so earlier offsets stay valid.
var hyphenOffsets = []int{20, 16, 12, 8}

// DefaultRegistry returns a registry holding every built-in stage.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(r.Register(StageCompact, KindBase, noParam(Base(compact))))
	must(r.Register(StageCrockford, KindBase, noParam(Base(crockford))))

	must(r.Register(StageHyphenated, KindDecorator, noParam(Decorator(hyphenate))))
	must(r.Register(StageUpperCase, KindDecorator, noParam(Decorator(strings.ToUpper))))
	must(r.Register(StageLowerCase, KindDecorator, noParam(Decorator(strings.ToLower))))
	must(r.Register(StageBraced, KindDecorator, noParam(Decorator(wrap("{", "}")))))
	must(r.Register(StageParenthesised, KindDecorator, noParam(Decorator(wrap("(", ")")))))
	must(r.Register(StageSuffix, KindDecorator, literal(func(text string) DecoratorFunc { return wrap("", text) })))
	must(r.Register(StagePrefix, KindDecorator, literal(func(text string) DecoratorFunc { return wrap(text, "") })))

	return r
}

func compact(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}

func crockford(id uuid.UUID) string {
	return ulid.ULID(id).String()
}

// hyphenate inserts hyphens at offsets 8, 12, 16 and 20 of its input,
// skipping offsets beyond the end.
func hyphenate(s string) string {
	for _, off := range hyphenOffsets {
		if off > len(s) {
			continue
		}
		s = s[:off] + "-" + s[off:]
	}
	return s
}

func wrap(prefix, suffix string) DecoratorFunc {
	return func(s string) string { return prefix + s + suffix }
}

func noParam(st Stage) Constructor {
	return func(param string) (Stage, error) {
		if param != "" {
			return Stage{}, fmt.Errorf("%w: takes no parameter, got %q", ErrInvalidParam, param)
		}
		return st, nil
	}
}

func literal(fn func(text string) DecoratorFunc) Constructor {
	return func(param string) (Stage, error) {
		if param == "" {
			return Stage{}, fmt.Errorf("%w: literal text is required", ErrInvalidParam)
		}
		return Decorator(fn(param)), nil
	}
}
