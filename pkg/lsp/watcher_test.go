package lsp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDiskWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.scr")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1"), 0o644))

	docs := NewDocumentStore()
	checked := make(chan string, 8)
	w, err := NewDiskWatcher(&DiskWatcherTarget{
		Docs:  docs,
		Check: func(ctx context.Context, file string) { checked <- file },
	})
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// A change to a file not yet resident populates the store at NoVersion.
	require.NoError(t, os.WriteFile(path, []byte("let a = 2"), 0o644))
	require.Eventually(t, func() bool {
		fs, ok := docs.Get(path)
		return ok && fs.Text() == "let a = 2"
	}, 2*time.Second, 10*time.Millisecond)
	fs, _ := docs.Get(path)
	require.Equal(t, NoVersion, fs.Version)

	// Once resident without an editor version, changes trigger a recheck.
	require.NoError(t, os.WriteFile(path, []byte("let a = 3"), 0o644))
	select {
	case file := <-checked:
		require.Equal(t, path, file)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a recheck")
	}
}

func TestDiskWatcherEditorOverlayWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.scr")
	require.NoError(t, os.WriteFile(path, []byte("let a = 1"), 0o644))

	docs := NewDocumentStore()
	docs.SetText(path, "editor content", 7)
	w, err := NewDiskWatcher(&DiskWatcherTarget{
		Docs:  docs,
		Check: func(ctx context.Context, file string) {},
	})
	require.NoError(t, err)

	w.reload(context.Background(), path)
	fs, ok := docs.Get(path)
	require.True(t, ok)
	require.Equal(t, "editor content", fs.Text())
	require.Equal(t, int32(7), fs.Version)
}
