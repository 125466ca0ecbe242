package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Level
		ok    bool
	}{
		{"debug lower", "debug", LevelDebug, true},
		{"info upper", "INFO", LevelInfo, true},
		{"warn mixed", "Warn", LevelWarn, true},
		{"error", "error", LevelError, true},
		{"unknown", "verbose", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmis.log")

	require.NoError(t, Init("warn", "json", path))
	t.Cleanup(func() { _ = Init("info", "text", "stdout") })

	Info("dropped %d", 1)
	Warn("kept %s", "entry")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept entry")
	assert.NotContains(t, string(data), "dropped 1")
}
