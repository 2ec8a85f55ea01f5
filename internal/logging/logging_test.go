package logging

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

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)

	l.Debug().Msg("hidden")
	l.Info().Str("page", "app").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "app", line["page"])
	assert.Contains(t, line, "timestamp")
	assert.Contains(t, line, "caller")
	assert.EqualValues(t, os.Getpid(), line["pid"])
}

func TestNew_ConsoleForDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.DebugLevel)
	l.Debug().Msg("details")

	assert.Contains(t, buf.String(), "details")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskdesk.log")
	l, closeFn, err := Open(path, zerolog.InfoLevel)
	require.NoError(t, err)
	l.Warn().Msg("written")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}

func TestOpen_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	l, closeFn, err := Open(filepath.Join(blocker, "taskdesk.log"), zerolog.InfoLevel)
	assert.Error(t, err)
	assert.NoError(t, closeFn())
	l.Info().Msg("discarded")
}
