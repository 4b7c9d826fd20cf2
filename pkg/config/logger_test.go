package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLogSettings(t *testing.T, format, level, filter string) {
	t.Helper()
	oldFormat, oldLevel, oldFilter := LogFormat, LogLevel, LogFilter
	LogFormat, LogLevel, LogFilter = format, level, filter
	t.Cleanup(func() {
		LogFormat, LogLevel, LogFilter = oldFormat, oldLevel, oldFilter
	})
}

func TestNewLogger(t *testing.T) {
	withLogSettings(t, "json", "warn", "")
	buf := &bytes.Buffer{}
	l, err := NewLogger(buf)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}

func TestNewLogger_InvalidLevelFallsBack(t *testing.T) {
	withLogSettings(t, "text", "verbose", "")
	l, err := NewLogger(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "debug", l.Level().String())
}

func TestNewLogger_Filter(t *testing.T) {
	withLogSettings(t, "json", "debug", "*:* -debug:openf1.*")
	buf := &bytes.Buffer{}
	l, err := NewLogger(buf)
	require.NoError(t, err)
	l.Named("openf1").Named("cache").Debug("dropped")
	l.Named("livesync").Debug("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	withLogSettings(t, "json", "debug", "bogus:*")
	_, err = NewLogger(buf)
	assert.Error(t, err)
}

func TestDurationOrDefault(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"5s", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"", time.Minute},
		{"abc", time.Minute},
		{"-1s", time.Minute},
		{"0s", time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationOrDefault(tt.value, time.Minute))
		})
	}
}
