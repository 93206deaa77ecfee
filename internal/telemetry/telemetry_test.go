package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseSampler(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"", "AlwaysOnSampler"},
		{"always_on", "AlwaysOnSampler"},
		{"always_off", "AlwaysOffSampler"},
		{"traceidratio", "TraceIDRatioBased{0.1}"},
		{"traceidratio:0.25", "TraceIDRatioBased{0.25}"},
	}
	for _, tc := range tests {
		s, err := parseSampler(tc.spec)
		require.NoError(t, err, tc.spec)
		assert.Contains(t, s.Description(), tc.want, tc.spec)
	}

	for _, bad := range []string{"sometimes", "traceidratio:1.5", "traceidratio:abc"} {
		_, err := parseSampler(bad)
		assert.Error(t, err, bad)
	}
}

func TestInitProvider_Disabled(t *testing.T) {
	p, err := InitProvider(context.Background(), Config{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, p.TracerProvider)
	assert.Nil(t, p.MeterProvider)
	assert.NoError(t, p.Shutdown(context.Background()))
}
