package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventFactChanged indicates the fact with the given pk was written or
	// erased by someone.
	EventFactChanged EventType = iota

	// EventInvalidated signals a change that could not be tied to one fact;
	// callers should treat anything they loaded as possibly stale.
	EventInvalidated
)

func (t EventType) String() string {
	if t == EventFactChanged {
		return "changed"
	}
	return "invalidated"
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	PK   int64
}

// burst is how long the watcher collects filesystem events before reporting.
const burst = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Events are dropped when
// the consumer falls behind, and the channel is closed once ctx is done or the
// watcher fails.
func (p *Disk) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	w := &diskWatch{
		fs:      fw,
		watched: make(map[string]bool),
		out:     make(chan Event, 64),
	}
	if err := w.addTree(p.basePath); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}
	w.batch = newBatcher(burst, w.emit)

	go w.run(ctx)
	return w.out, nil
}

// diskWatch follows the store directory and its date shards.
type diskWatch struct {
	fs      *fsnotify.Watcher
	watched map[string]bool
	batch   *batcher
	out     chan Event
}

func (w *diskWatch) run(ctx context.Context) {
	defer close(w.out)
	defer func() {
		if err := w.fs.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
		}
	}()
	defer w.batch.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.batch.add(Event{Type: EventInvalidated})
		case evt, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.batch.add(w.classify(evt))
		}
	}
}

// classify maps a filesystem event to the fact it touched. Diskv names each
// file after the fact pk.
func (w *diskWatch) classify(evt fsnotify.Event) Event {
	if evt.Has(fsnotify.Create) {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			if err := w.addTree(evt.Name); err != nil {
				fmt.Fprintf(os.Stderr, "store: watch %s: %v\n", evt.Name, err)
			}
			// Files may land in a new shard before it is watched.
			return Event{Type: EventInvalidated}
		}
	}
	pk, err := strconv.ParseInt(filepath.Base(evt.Name), 10, 64)
	if err != nil || pk <= 0 {
		return Event{Type: EventInvalidated}
	}
	return Event{Type: EventFactChanged, PK: pk}
}

// addTree watches root and every directory below it not yet watched.
func (w *diskWatch) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		dir := filepath.Clean(path)
		if !d.IsDir() || w.watched[dir] {
			return nil
		}
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.watched[dir] = true
		return nil
	})
}

func (w *diskWatch) emit(ev Event) {
	select {
	case w.out <- ev:
	default:
	}
}

// batcher collects events for a short delay and reports each distinct one
// once, in arrival order. An invalidation swallows the rest of its batch.
type batcher struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending []Event
	stale   bool
	stopped bool
	emit    func(Event)
}

func newBatcher(delay time.Duration, emit func(Event)) *batcher {
	return &batcher{delay: delay, emit: emit}
}

func (b *batcher) add(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	switch {
	case ev.Type == EventInvalidated:
		b.stale = true
	case !slices.Contains(b.pending, ev):
		b.pending = append(b.pending, ev)
	}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.flush)
	}
}

// flush emits under the lock so nothing is sent once stop returns.
func (b *batcher) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timer = nil
	if b.stopped {
		return
	}
	if b.stale {
		b.emit(Event{Type: EventInvalidated})
	} else {
		for _, ev := range b.pending {
			b.emit(ev)
		}
	}
	b.pending, b.stale = b.pending[:0], false
}

func (b *batcher) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
