package log_test

import (
	"bytes"
	"testing"

	"bennypowers.dev/embedls/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(nil)
	defer log.SetLevel(log.LevelInfo)

	tests := []struct {
		level     log.Level
		logged    []string
		notLogged []string
	}{
		{
			level:     log.LevelDebug,
			logged:    []string{"debug message", "info message", "warn message", "error message"},
			notLogged: nil,
		},
		{
			level:     log.LevelInfo,
			logged:    []string{"info message", "warn message", "error message"},
			notLogged: []string{"debug message"},
		},
		{
			level:     log.LevelError,
			logged:    []string{"error message"},
			notLogged: []string{"debug message", "info message", "warn message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			buf.Reset()
			log.SetLevel(tt.level)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")

			output := buf.String()
			for _, msg := range tt.logged {
				assert.Contains(t, output, msg)
			}
			for _, msg := range tt.notLogged {
				assert.NotContains(t, output, msg)
			}
		})
	}
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.LevelInfo)
	defer log.SetOutput(nil)

	log.Info("opened %s (%d bytes)", "index.html", 42)

	assert.Equal(t, "[ELS] opened index.html (42 bytes)\n", buf.String())
}

func TestNilOutputIsSilent(t *testing.T) {
	log.SetOutput(nil)
	assert.NotPanics(t, func() { log.Error("dropped") })
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want log.Level
	}{
		{"debug", log.LevelDebug},
		{"INFO", log.LevelInfo},
		{"", log.LevelInfo},
		{"warn", log.LevelWarn},
		{"Warning", log.LevelWarn},
		{" error ", log.LevelError},
	}
	for _, tt := range tests {
		got, err := log.ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := log.ParseLevel("verbose")
	assert.Error(t, err)
}
