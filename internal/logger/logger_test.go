package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json"}, &buf)

	sub := l.Component("tmdb")
	sub.Debug().Str("kind", "cast").Msg("Dispatching sub-request")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tmdb", entry["component"])
	assert.Equal(t, "cast", entry["kind"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json"}, &buf)
	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestNew_FileRotation(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	l := New(Config{Format: "json", Path: dir}, &buf)
	l.Info().Msg("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
