package transcript

import (
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/loupgaroublond/tavern/internal/event"
	"github.com/loupgaroublond/tavern/internal/logging"
)

// UpdatedData is published whenever a watched transcript file changes
// on disk, so a UI open on that session can re-read and rehydrate.
type UpdatedData struct {
	Path string
}

// Updated is the event type Watcher publishes.
const Updated event.EventType = "transcript.updated"

// Watcher tails one project's transcript directory for file writes,
// publishing Updated on bus whenever a .jsonl file changes. Grounded on
// the teacher's internal/vcs file-watcher shape (fsnotify + stop/done
// channel pair).
type Watcher struct {
	watcher *fsnotify.Watcher
	bus     *event.Bus
	stopCh  chan struct{}
	doneCh  chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewWatcher watches dir (a project's transcript directory under
// <runtime-root>/projects/<encoded-project-path>) for changes, publishing
// on bus. Returns an error if dir does not exist yet; the caller may
// retry once the runtime has created it.
func NewWatcher(dir string, bus *event.Bus) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	return &Watcher{
		watcher: w,
		bus:     bus,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. Calling it more than
// once is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.bus.PublishSync(event.Event{Type: Updated, Data: UpdatedData{Path: ev.Name}})
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error().Err(err).Msg("transcript watcher error")
		}
	}
}

// Stop stops the watcher and releases its underlying fsnotify handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	alreadyClosed := w.closed
	w.closed = true
	w.mu.Unlock()

	if alreadyClosed {
		return nil
	}

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	if started {
		<-w.doneCh
	}
	return w.watcher.Close()
}
