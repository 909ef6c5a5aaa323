package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.WarnLevel,
		"unknown": zerolog.WarnLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNew_WritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "genguid", Output: &buf})
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "genguid", entry[FieldService])
	assert.Equal(t, "hello", entry["message"])
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	assert.Equal(t, L(), Ctx(context.Background()))
	//nolint:staticcheck // nil context is accepted on purpose
	assert.Equal(t, L(), Ctx(nil))
}

func TestComponent_TagsLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Level: "debug", Output: &buf}))

	l := Component(ctx, "genlog")
	l.Debug().Msg("x")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "genlog", entry[FieldComponent])
}

func TestCommandScope_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Output: &buf})

	ctx, finish := CommandScope(context.Background(), logger, "genguid new")
	require.NotNil(t, ctx)
	finish(errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "genguid new", entry[FieldCommand])
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry[FieldRunID])
}
