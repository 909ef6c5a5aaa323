package settings

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/genguid/internal/config"
	"github.com/weiawesome/genguid/internal/counter"
	"github.com/weiawesome/genguid/internal/factory"
	"github.com/weiawesome/genguid/internal/formatter"
)

var fixedNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:    t.TempDir(),
		Factory:    "standard",
		Formatters: []string{"compact", "hyphenated"},
		GenerationLog: config.GenerationLogConfig{
			Driver:     config.DriverMemory,
			FileName:   "log.json",
			SQLiteFile: "log.db",
		},
		Observers: []string{ObserverCounter},
		Log:       config.LogConfig{Level: "warn"},
	}
}

func newProvider(t *testing.T, cfg *config.Config, store Store, opts ...Option) *Provider {
	t.Helper()
	opts = append([]Option{
		WithCountStore(&counter.MemoryStore{}),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	p, err := New(context.Background(), cfg, DefaultRegistry(cfg), store, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func generate(t *testing.T, p *Provider, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := p.Factory().GenerateNext(context.Background())
		require.NoError(t, err)
	}
}

func TestNew_Defaults(t *testing.T) {
	p := newProvider(t, testConfig(t), &MemoryStore{})

	assert.Equal(t, "standard", p.ReadFactory())
	assert.Equal(t, []string{"compact", "hyphenated"}, p.ReadFormatterStages())
	assert.Equal(t, config.DriverMemory, p.ReadGenerationLog())
	assert.Equal(t, []string{ObserverCounter}, p.ReadObservers())

	observers := p.Factory().Observers()
	require.Len(t, observers, 2)
	assert.Equal(t, factory.Observer(p.GenerationLog()), observers[0])
	assert.Equal(t, factory.Observer(p.Counter()), observers[1])
}

func TestNew_OverlaysSavedSelection(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Save(Selection{Factory: "ulid", Formatters: []string{"crockford"}}))

	p := newProvider(t, testConfig(t), store)
	assert.Equal(t, "ulid", p.ReadFactory())
	assert.Equal(t, []string{"crockford"}, p.ReadFormatterStages())
	assert.Equal(t, config.DriverMemory, p.ReadGenerationLog())
}

func TestNew_Misconfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		section string
	}{
		{"unknown factory", func(c *config.Config) { c.Factory = "snowflake" }, SectionFactory},
		{"invalid chain", func(c *config.Config) { c.Formatters = []string{"uppercase"} }, SectionFormatters},
		{"unknown log", func(c *config.Config) { c.GenerationLog.Driver = "postgres" }, SectionGenerationLog},
		{"unknown observer", func(c *config.Config) { c.Observers = []string{"clipboard"} }, SectionObservers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			_, err := New(context.Background(), cfg, DefaultRegistry(cfg), &MemoryStore{}, WithCountStore(&counter.MemoryStore{}))
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.section, cfgErr.Section)
			assert.True(t, strings.HasPrefix(err.Error(), "misconfiguration in "+tt.section+" section: "))
		})
	}
}

func TestGenerate_NotifiesLogAndCounter(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, testConfig(t), &MemoryStore{})
	generate(t, p, 3)

	latest, err := p.GenerationLog().Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.SequenceNumber)
	assert.Equal(t, fixedNow, latest.Timestamp)

	n, err := p.Counter().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRegisterFactory_RestoresFromLog(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	p := newProvider(t, testConfig(t), store)
	generate(t, p, 2)
	before := p.Factory().CurrentIdentifier()

	require.NoError(t, p.RegisterFactory(ctx, "ulid"))
	assert.Equal(t, "ulid", p.ReadFactory())
	assert.Equal(t, "ulid", p.Factory().GeneratorName())
	assert.True(t, before.Equal(p.Factory().CurrentIdentifier()))

	next, err := p.Factory().GenerateNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.SequenceNumber)

	saved, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ulid", saved.Factory)
}

func TestRegisterFactory_InvalidArgument(t *testing.T) {
	p := newProvider(t, testConfig(t), &MemoryStore{})
	assert.ErrorIs(t, p.RegisterFactory(context.Background(), ""), ErrInvalidArgument)
	assert.ErrorIs(t, p.RegisterFactory(context.Background(), "snowflake"), ErrInvalidArgument)
	assert.Equal(t, "standard", p.ReadFactory())
}

func TestRegisterFormatterStage(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, testConfig(t), &MemoryStore{})

	require.NoError(t, p.RegisterFormatterStage(ctx, "Braced"))
	assert.Equal(t, []string{"compact", "hyphenated", "braced"}, p.ReadFormatterStages())
	assert.Equal(t, "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}", p.Formatter().TemplateString())

	require.NoError(t, p.RegisterFormatterStage(ctx, "suffix:.txt"))
	assert.Equal(t, "suffix:.txt", p.ReadFormatterStages()[3])

	assert.ErrorIs(t, p.RegisterFormatterStage(ctx, ""), ErrInvalidArgument)
	assert.ErrorIs(t, p.RegisterFormatterStage(ctx, "rot13"), ErrInvalidArgument)

	err := p.RegisterFormatterStage(ctx, "crockford")
	assert.ErrorIs(t, err, formatter.ErrTypeContract)
	assert.Len(t, p.ReadFormatterStages(), 4)
}

func TestDeregisterFormatterStage(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, testConfig(t), &MemoryStore{})

	require.NoError(t, p.RegisterFormatterStage(ctx, "uppercase"))
	require.NoError(t, p.RegisterFormatterStage(ctx, "braced"))
	require.NoError(t, p.RegisterFormatterStage(ctx, "uppercase"))

	require.NoError(t, p.DeregisterFormatterStage(ctx, "uppercase"))
	assert.Equal(t, []string{"compact", "hyphenated", "braced"}, p.ReadFormatterStages())

	require.NoError(t, p.DeregisterFormatterStage(ctx, "lowercase"))
	assert.Len(t, p.ReadFormatterStages(), 3)

	err := p.DeregisterFormatterStage(ctx, "compact")
	assert.ErrorIs(t, err, formatter.ErrTypeContract)
	assert.Equal(t, []string{"compact", "hyphenated", "braced"}, p.ReadFormatterStages())

	assert.ErrorIs(t, p.DeregisterFormatterStage(ctx, ""), ErrInvalidArgument)
}

func TestObservers(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	p := newProvider(t, testConfig(t), &MemoryStore{}, WithOutput(&out))

	require.NoError(t, p.RegisterObserver(ctx, ObserverStdout))
	assert.ErrorIs(t, p.RegisterObserver(ctx, ObserverStdout), factory.ErrAlreadySubscribed)
	assert.ErrorIs(t, p.RegisterObserver(ctx, "clipboard"), ErrInvalidArgument)

	pkt, err := p.Factory().GenerateNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, pkt.Value.String()+"\n", out.String())

	require.NoError(t, p.DeregisterObserver(ctx, ObserverAudit))
	require.NoError(t, p.DeregisterObserver(ctx, ObserverCounter))
	assert.Equal(t, []string{ObserverStdout}, p.ReadObservers())

	generate(t, p, 1)
	n, err := p.Counter().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegisterGenerationLog(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t, testConfig(t), &MemoryStore{})
	generate(t, p, 2)

	require.NoError(t, p.RegisterGenerationLog(ctx, config.DriverJSONFile))
	assert.True(t, p.Factory().CurrentIdentifier().IsNull())

	generate(t, p, 1)
	latest, err := p.GenerationLog().Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest.SequenceNumber)

	assert.ErrorIs(t, p.RegisterGenerationLog(ctx, "postgres"), ErrInvalidArgument)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	p := newProvider(t, testConfig(t), store)

	require.NoError(t, p.RegisterFactory(ctx, "timeordered"))
	require.NoError(t, p.RegisterFormatterStage(ctx, "uppercase"))
	require.NoError(t, p.Reset(ctx))

	assert.Equal(t, "standard", p.ReadFactory())
	assert.Equal(t, []string{"compact", "hyphenated"}, p.ReadFormatterStages())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}
