package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/nicstat/pkg/config"
	"github.com/carverauto/nicstat/pkg/tc"
)

func TestConfigNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cfg          Config
		wantInterval time.Duration
		wantBuffer   int
	}{
		{
			name:         "defaults",
			wantInterval: defaultSampleInterval,
			wantBuffer:   tc.DefaultRecvBufferSize,
		},
		{
			name:         "clamped low",
			cfg:          Config{SampleInterval: config.Duration(time.Millisecond), RecvBufferSize: 512},
			wantInterval: minSampleInterval,
			wantBuffer:   tc.MinRecvBufferSize,
		},
		{
			name:         "clamped high",
			cfg:          Config{SampleInterval: config.Duration(time.Hour), RecvBufferSize: 1 << 20},
			wantInterval: maxSampleInterval,
			wantBuffer:   1 << 20,
		},
		{
			name:         "kept",
			cfg:          Config{SampleInterval: config.Duration(5 * time.Second)},
			wantInterval: 5 * time.Second,
			wantBuffer:   tc.DefaultRecvBufferSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			cfg.Normalize()

			assert.Equal(t, tt.wantInterval, cfg.Interval())
			assert.Equal(t, tt.wantBuffer, cfg.RecvBufferSize)
			assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
			assert.Equal(t, defaultParallelism, cfg.Parallelism)
			assert.Equal(t, tc.DefaultRecvTimeout, time.Duration(cfg.NetlinkTimeout))
			assert.NotNil(t, cfg.Logging)
		})
	}
}

func TestConfigNormalizeKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{ListenAddr: ":9000", Parallelism: 2, NetlinkTimeout: config.Duration(time.Second)}
	cfg.Normalize()

	assert.Equal(t, time.Second, time.Duration(cfg.NetlinkTimeout))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 2, cfg.Parallelism)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&Config{Interfaces: []string{"eth0", "enp3s0f0np0"}}).Validate())

	assert.ErrorIs(t, (&Config{}).Validate(), errNoInterfaces)
	assert.ErrorIs(t, (&Config{Interfaces: []string{""}}).Validate(), errInvalidInterfaceName)
	assert.ErrorIs(t, (&Config{Interfaces: []string{strings.Repeat("x", 17)}}).Validate(), errInvalidInterfaceName)
	assert.ErrorIs(t, (&Config{Interfaces: []string{strings.Repeat("x", 16)}}).Validate(), errInvalidInterfaceName)
	require.NoError(t, (&Config{Interfaces: []string{strings.Repeat("x", 15)}}).Validate())
}

func TestConfigLoad(t *testing.T) {
	t.Parallel()

	var cfg Config

	loader := config.NewConfig(nil)
	err := loader.LoadAndValidate(t.Context(), "", &cfg)
	require.ErrorIs(t, err, errNoInterfaces)

	// Normalize ran before validation.
	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
}

func TestConfigLoadFromEnvKeepsLoggingDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("NICSTAT_INTERFACES", "eth0")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_OUTPUT", "stderr")

	var cfg Config

	require.NoError(t, config.NewConfig(nil).LoadAndValidate(t.Context(), "", &cfg))

	assert.Equal(t, []string{"eth0"}, cfg.Interfaces)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}
