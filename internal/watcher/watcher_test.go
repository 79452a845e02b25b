package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type eventLog struct {
	mu       sync.Mutex
	ingested []string
	removed  []string
}

func (l *eventLog) ingest(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ingested = append(l.ingested, path)
}

func (l *eventLog) remove(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removed = append(l.removed, path)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcherIngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	log := &eventLog{}

	w := NewWatcher(dir, []string{".md"}, log.ingest, log.remove, WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "iqama.md")
	if err := os.WriteFile(path, []byte("---\ntitle: Iqama\n---\nbody"), 0600); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 3*time.Second, func() bool {
		log.mu.Lock()
		defer log.mu.Unlock()
		return len(log.ingested) >= 1
	})
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.ingested[0] != path {
		t.Errorf("ingested = %v, want %q", log.ingested, path)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	log := &eventLog{}

	w := NewWatcher(dir, []string{".md"}, log.ingest, log.remove, WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "data.bin"), []byte{0x01}, 0600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.ingested) != 0 {
		t.Errorf("ingested = %v, want no events for ignored extension", log.ingested)
	}
}

func TestWatcherRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "visa.md")
	if err := os.WriteFile(path, []byte("content"), 0600); err != nil {
		t.Fatal(err)
	}
	log := &eventLog{}

	w := NewWatcher(dir, []string{".md"}, log.ingest, log.remove, WithDebounce(50*time.Millisecond))
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	waitFor(t, 3*time.Second, func() bool {
		log.mu.Lock()
		defer log.mu.Unlock()
		return len(log.removed) >= 1
	})
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.removed[0] != path {
		t.Errorf("removed = %v, want %q", log.removed, path)
	}
}

func TestWatcherStartNonexistentRoot(t *testing.T) {
	w := NewWatcher("/nonexistent/corpus/dir", nil, nil, nil)
	if err := w.Start(context.Background()); err == nil {
		t.Error("Start() on missing directory should fail")
		w.Stop()
	}
}
