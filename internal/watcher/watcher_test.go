package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/pricefeed/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly whenever the watcher waits and runs onAfter
// with the elapsed time, so tests can change the directory between polls.
type fakeClock struct {
	start   time.Time
	now     time.Time
	onAfter func(elapsed time.Duration)
}

func newFakeClock() *fakeClock {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &fakeClock{start: start, now: start}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	if c.onAfter != nil {
		c.onAfter(c.now.Sub(c.start))
	}
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func testConfig() Config {
	return Config{
		PollInterval:  time.Second,
		MaxWait:       5 * time.Second,
		FallbackAfter: 3 * time.Second,
	}
}

func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	return path
}

func snapshot(t *testing.T, dir string) models.DirectorySnapshot {
	t.Helper()
	snap, err := CaptureSnapshot(dir)
	require.NoError(t, err)
	return snap
}

func TestWatcher_FileAppearsAtSecondPoll(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock()
	var created string
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == 2*time.Second {
			created = writeFile(t, dir, "Report_2024.csv", "a;b", time.Time{})
		}
	}

	w := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock)
	result, err := w.Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, created, result.Path)
	assert.Equal(t, 2, result.Polls, "returned after the second poll, not before")
	assert.Equal(t, 2*time.Second, result.Elapsed)
	assert.False(t, result.Fallback)
}

func TestWatcher_NewMatchingFileWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.xlsx", "old", time.Now().Add(-time.Hour))
	baseline := snapshot(t, dir)

	clock := newFakeClock()
	var b string
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			b = writeFile(t, dir, "AutoFix_05.xlsx", "new", time.Time{})
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: baseline,
		Patterns: []string{"AutoFix*.xlsx"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, b, result.Path)
	assert.Equal(t, 1, result.Polls)
}

func TestWatcher_ModifiedFileDetected(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now().Add(-time.Minute)
	a := writeFile(t, dir, "A.csv", "abc", mtime)
	baseline := snapshot(t, dir)

	clock := newFakeClock()
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			writeFile(t, dir, "A.csv", "abcdefghij", mtime)
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: baseline,
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, a, result.Path)
}

func TestWatcher_OverwriteWithOlderTimestampDetected(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	a := writeFile(t, dir, "A.csv", "abc", now)
	baseline := snapshot(t, dir)

	clock := newFakeClock()
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			writeFile(t, dir, "A.csv", "xyz", now.Add(-24*time.Hour))
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: baseline,
		Patterns: []string{"A*.csv"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, a, result.Path)
	assert.Equal(t, 1, result.Polls)
}

func TestWatcher_PatternMatchBeatsNewerFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	clock := newFakeClock()
	var match string
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			match = writeFile(t, dir, "MundoRepCar_lista.csv", "x", now.Add(-time.Minute))
			writeFile(t, dir, "unrelated.pdf", "y", now)
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"MundoRepCar*.csv"},
	})

	require.NoError(t, err)
	assert.Equal(t, match, result.Path)
}

func TestWatcher_MostRecentWithoutMatch(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	clock := newFakeClock()
	var newest string
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			writeFile(t, dir, "older.xlsx", "x", now.Add(-time.Minute))
			newest = writeFile(t, dir, "newer.xlsx", "y", now)
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"AutoFix*.xlsx"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, newest, result.Path)
}

func TestWatcher_TieBrokenByPath(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Now().Truncate(time.Second)

	clock := newFakeClock()
	var first string
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			writeFile(t, dir, "Report_b.csv", "x", mtime)
			first = writeFile(t, dir, "Report_a.csv", "x", mtime)
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	assert.Equal(t, first, result.Path)
}

func TestWatcher_NotFoundIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Report_old.csv", "x", time.Now().Add(-time.Hour))

	clock := newFakeClock()
	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Path)
	assert.Equal(t, 5, result.Polls)
	assert.Equal(t, 5*time.Second, result.Elapsed)
}

func TestWatcher_IgnoresPartialAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()

	clock := newFakeClock()
	clock.onAfter = func(elapsed time.Duration) {
		if elapsed == time.Second {
			writeFile(t, dir, "Report_2024.csv.crdownload", "x", time.Time{})
			writeFile(t, dir, ".Report_2024.csv", "x", time.Time{})
			writeFile(t, dir, "screenshot_error.png", "x", time.Time{})
			require.NoError(t, os.Mkdir(filepath.Join(dir, "Report_dir.csv"), 0o755))
		}
	}

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestWatcher_LastWaitClippedToDeadline(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.PollInterval = 2 * time.Second
	cfg.MaxWait = 3 * time.Second

	clock := newFakeClock()
	var late string
	clock.onAfter = func(elapsed time.Duration) {
		// The last wait is clipped to the deadline.
		if elapsed == 3*time.Second {
			late = writeFile(t, dir, "Report_late.csv", "x", time.Time{})
		}
	}

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, late, result.Path)
	assert.Equal(t, 2, result.Polls)
}

func TestWatcher_InitialDelay(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.InitialDelay = 3 * time.Second

	clock := newFakeClock()
	var waits []time.Duration
	last := time.Duration(0)
	clock.onAfter = func(elapsed time.Duration) {
		waits = append(waits, elapsed-last)
		last = elapsed
		if elapsed == 3*time.Second {
			writeFile(t, dir, "Report.csv", "x", time.Time{})
		}
	}

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, 1, result.Polls)
	assert.Equal(t, []time.Duration{3 * time.Second}, waits)
}

func TestWatcher_RequestMaxWaitOverride(t *testing.T) {
	clock := newFakeClock()
	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(clock).Wait(context.Background(), Request{
		Dir:      t.TempDir(),
		Patterns: []string{"Report*.csv"},
		MaxWait:  2 * time.Second,
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, 2, result.Polls)
}

func TestWatcher_FallbackDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AutoFix_stale.xlsx", "x", time.Now().Add(-24*time.Hour))

	cfg := testConfig()
	require.False(t, cfg.FallbackEnabled)

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(newFakeClock()).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"AutoFix*.xlsx"},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestWatcher_FallbackReturnsExistingFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "notes.txt", "x", now)
	stale := writeFile(t, dir, "AutoFix_stale.xlsx", "x", now.Add(-time.Hour))

	cfg := testConfig()
	cfg.FallbackEnabled = true
	cfg.MaxWait = 10 * time.Second

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(newFakeClock()).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"AutoFix*.xlsx"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.True(t, result.Fallback)
	assert.Equal(t, stale, result.Path, "pattern matches are preferred over newer files")
	assert.Equal(t, 3, result.Polls)
}

func TestWatcher_FallbackSkipsOtherTargetsFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFile(t, dir, "express.csv", "x", now)
	writeFile(t, dir, "repcar.csv", "x", now.Add(-time.Minute))
	older := writeFile(t, dir, "lista.xlsx", "x", now.Add(-time.Hour))

	cfg := testConfig()
	cfg.FallbackEnabled = true

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(newFakeClock()).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"AutoFix*.xlsx"},
		Reserved: []string{"express", "repcar"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.True(t, result.Fallback)
	assert.Equal(t, older, result.Path)
}

func TestWatcher_FallbackWithOnlyReservedFilesKeepsPolling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "express.csv", "x", time.Now())

	cfg := testConfig()
	cfg.FallbackEnabled = true

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(newFakeClock()).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"AutoFix*.xlsx"},
		Reserved: []string{"express"},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, 5, result.Polls)
}

func TestWatcher_FallbackWithEmptyDirectoryKeepsPolling(t *testing.T) {
	cfg := testConfig()
	cfg.FallbackEnabled = true

	result, err := NewWatcher(cfg, zerolog.Nop()).WithClock(newFakeClock()).Wait(context.Background(), Request{
		Dir:      t.TempDir(),
		Patterns: []string{"AutoFix*.xlsx"},
	})

	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Equal(t, 5, result.Polls)
}

func TestWatcher_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewWatcher(testConfig(), zerolog.Nop()).WithClock(newFakeClock()).Wait(ctx, Request{
		Dir:      t.TempDir(),
		Patterns: []string{"Report*.csv"},
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.Found)
	assert.Zero(t, result.Polls)
}

func TestWatcher_FSNotifyWake(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		PollInterval: 10 * time.Second,
		MaxWait:      3 * time.Second,
		UseFSNotify:  true,
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "Report_fast.csv"), []byte("x"), 0o644)
	}()

	result, err := NewWatcher(cfg, zerolog.Nop()).Wait(context.Background(), Request{
		Dir:      dir,
		Baseline: snapshot(t, dir),
		Patterns: []string{"Report*.csv"},
	})

	require.NoError(t, err)
	require.True(t, result.Found)
	assert.Equal(t, "Report_fast.csv", filepath.Base(result.Path))
}

func TestBuildBaseline(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "A.csv", "abc", time.Time{})
	missing := filepath.Join(dir, "gone.csv")

	baseline := BuildBaseline([]string{existing, missing})

	require.Len(t, baseline, 2)
	assert.Equal(t, int64(3), baseline[existing].Size)
	assert.Equal(t, models.FileState{}, baseline[missing])
	assert.ElementsMatch(t, []string{existing, missing}, baseline.Paths())
}

func TestCaptureSnapshot(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "A.csv", "abc", time.Time{})
	writeFile(t, dir, "B.csv.part", "abc", time.Time{})

	snap := snapshot(t, dir)
	assert.Equal(t, []string{a}, snap.Paths())

	missing, err := CaptureSnapshot(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
