package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReportsSpecEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "physics.yaml"), []byte("gravity: 1\n"), 0o644))

	select {
	case name := <-w.Events:
		require.True(t, Matches(name, "physics"))
		require.False(t, Matches(name, "crate"))
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for physics.yaml")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	var nilWatcher *Watcher
	require.NoError(t, nilWatcher.Close())
}

func TestFileFilters(t *testing.T) {
	require.True(t, isSpecFile("a/b.YAML"))
	require.True(t, isSpecFile("b.yml"))
	require.False(t, isSpecFile("b.json"))
	require.True(t, isScriptFile("patrol.tengo"))
}
