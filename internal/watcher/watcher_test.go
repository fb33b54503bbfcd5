package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/diagramkit/internal/watcher"
)

func startWatcher(t *testing.T, path string) (*watcher.Watcher, <-chan struct{}) {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	ch, err := w.Start()
	require.NoError(t, err)
	return w, ch
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))
	_, onChange := startWatcher(t, path)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("v%d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))
	require.NoError(t, os.WriteFile(other, []byte("v0"), 0644))
	_, onChange := startWatcher(t, path)

	require.NoError(t, os.WriteFile(other, []byte("v1"), 0644))

	select {
	case <-onChange:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_SeesRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))
	_, onChange := startWatcher(t, path)

	tmp := filepath.Join(dir, ".flow.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v1"), 0644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification after rename")
	}
}

func TestWatcher_Mute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))
	w, onChange := startWatcher(t, path)

	w.Mute(time.Second)
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	select {
	case <-onChange:
		t.Fatal("muted write should not notify")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := watcher.New(watcher.Config{Path: "flow.yaml"})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
}
