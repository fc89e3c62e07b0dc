package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_ModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("LibraryProvider", "cache miss", map[string]interface{}{"kind": "notes"})
	l.Warn("LibraryProvider", "no details", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "LibraryProvider", ctx["module"])
	assert.Equal(t, map[string]interface{}{"kind": "notes"}, ctx["details"])

	assert.Equal(t, map[string]interface{}{}, entries[1].ContextMap()["details"])
}

func TestZapLogger_ErrorRef(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Error("Backend", "upsert failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.FilterField(zap.String("module", "Backend")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error_ref"])
}

func TestZapLogger_ErrorsInDetailsAreStrings(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Warn("ChangeNotifier", "publish failed", map[string]interface{}{"error": errors.New("nats down"), "type": "LIBRARY_SAVED"})

	entry := logs.All()[0]
	assert.Equal(t, map[string]interface{}{"error": "nats down", "type": "LIBRARY_SAVED"}, entry.ContextMap()["details"])
	assert.Equal(t, "nats down", entry.ContextMap()["error_ref"])
}

func TestNew_FileOnlyHonoursLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.log")
	l := New(Options{FilePath: path, Level: "warn", FileOnly: true})

	l.Info("Hub", "client registered", nil)
	l.Warn("Hub", "buffer full", map[string]interface{}{"scope": "local:x"})
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "client registered")
	assert.Contains(t, string(raw), `"message":"buffer full"`)
	assert.Contains(t, string(raw), `"module":"Hub"`)
}
