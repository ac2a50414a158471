package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type level string

const (
	levelDebug level = "debug"
	levelInfo  level = "info"
	levelWarn  level = "warn"
)

func newLevels() *Normalizer[level] {
	return New("log level", map[string]level{
		"debug":   levelDebug,
		"info":    levelInfo,
		"warn":    levelWarn,
		"warning": levelWarn,
	}, levelInfo)
}

func TestNormalize(t *testing.T) {
	n := newLevels()
	tests := []struct {
		in   string
		want level
	}{
		{"debug", levelDebug},
		{"  DEBUG ", levelDebug},
		{"Warning", levelWarn},
		{"nonsense", levelInfo},
		{"", levelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	n := newLevels()

	v, err := n.Parse("WARN")
	require.NoError(t, err)
	require.Equal(t, levelWarn, v)

	v, err = n.Parse("   ")
	require.NoError(t, err)
	require.Equal(t, levelInfo, v)

	_, err = n.Parse("loud")
	require.Error(t, err)
	require.Contains(t, err.Error(), "log level")
	require.Contains(t, err.Error(), "debug, info, warn, warning")
}

func TestValidAndKeys(t *testing.T) {
	n := newLevels()
	require.True(t, n.Valid(" Info"))
	require.False(t, n.Valid("trace"))

	keys := n.Keys()
	require.Equal(t, []string{"debug", "info", "warn", "warning"}, keys)
	keys[0] = "mutated"
	require.Equal(t, "debug", n.Keys()[0])
}
