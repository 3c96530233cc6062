package scenario

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), "")
	writeFile(t, filepath.Join(dir, "nested", "deep", "b.yaml"), "")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "")

	got, err := Expand(filepath.Join(dir, "**", "*.yaml"), filepath.Join(dir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "deep", "b.yaml"),
	}, got)

	_, err = Expand(filepath.Join(dir, "*.json"))
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = Expand(filepath.Join(dir, "[.yaml"))
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	patterns := []string{"scenarios/**/*.yaml"}
	assert.True(t, Matches("scenarios/a.yaml", patterns))
	assert.True(t, Matches("./scenarios/x/y/b.yaml", patterns))
	assert.False(t, Matches("scenarios/a.yml", patterns))
	assert.False(t, Matches("other/a.yaml", patterns))
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	var fired atomic.Int32
	for range 5 {
		d.add("a", func(string) { fired.Add(1) })
	}
	d.add("b", func(string) { fired.Add(1) })

	require.Eventually(t, func() bool { return fired.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(2), fired.Load())
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newDebouncer(time.Hour)
	var fired atomic.Int32
	d.add("a", func(string) { fired.Add(1) })
	d.stopAndWait(time.Second)
	d.add("b", func(string) { fired.Add(1) })
	assert.Zero(t, fired.Load())
}

func TestWatcher_ReportsChangedScenario(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "flows", "grant.yaml")
	writeFile(t, target, "steps: []\n")

	changes := make(chan string, 4)
	w := NewWatcher([]string{filepath.Join(dir, "**", "*.yaml")}, changes, nil)
	w.delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	assert.Equal(t, worker.StatusRunning, w.State().Status)

	// Ignored: does not match.
	writeFile(t, filepath.Join(dir, "flows", "notes.txt"), "x")
	writeFile(t, target, "steps:\n  - op: connect\n    name: A\n")

	select {
	case got := <-changes:
		assert.Equal(t, target, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	assert.Error(t, w.Start(ctx), "second start must fail")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, w.Stop(stopCtx))
}
