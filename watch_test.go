package textwerk

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeTemp(t, "before\n")

	td := NewTextDocument()
	require.NoError(t, td.ReadFile(path))

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(td, path)
	inner := w.Reload
	w.Reload = func() error {
		err := inner()
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return err
	}
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("after\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not observe the write")
	}
	assert.Equal(t, "after\n", td.GetWholeFileString())
	assert.False(t, td.UnsavedChanges(), "reload marks the document saved")
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	path := writeTemp(t, "mine\n")

	td := NewTextDocument()
	require.NoError(t, td.ReadFile(path))

	called := make(chan struct{}, 1)
	w := NewWatcher(td, path)
	w.Reload = func() error {
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	}
	require.NoError(t, w.Start())
	defer w.Stop()

	sibling := path + ".other"
	require.NoError(t, os.WriteFile(sibling, []byte("noise\n"), 0o644))

	select {
	case <-called:
		t.Fatal("watcher reacted to an unrelated file")
	case <-time.After(250 * time.Millisecond):
	}
}

func TestWatcherStop(t *testing.T) {
	path := writeTemp(t, "x\n")
	td := NewTextDocument()
	require.NoError(t, td.ReadFile(path))

	w := NewWatcher(td, path)
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
}
