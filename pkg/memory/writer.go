package memory

import (
	"context"
	"time"
)

const defaultSaveTimeout = 5 * time.Second

// writer owns every backend save. Store methods never write the
// document themselves; they signal the writer, and consecutive
// signals coalesce into a single save of the freshest snapshot.
type writer struct {
	backend  DocumentStore
	snapshot func() *Document
	onResult func(err error)
	timeout  time.Duration

	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

func newWriter(backend DocumentStore, snapshot func() *Document, onResult func(error), timeout time.Duration) *writer {
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	return &writer{
		backend:  backend,
		snapshot: snapshot,
		onResult: onResult,
		timeout:  timeout,
		signal:   make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *writer) start() {
	go w.run()
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.signal:
			w.save()
		case <-w.stop:
			// Final save captures whatever the store holds now.
			w.save()
			return
		}
	}
}

func (w *writer) save() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	err := w.backend.Save(ctx, w.snapshot())
	if w.onResult != nil {
		w.onResult(err)
	}
}

// request asks for a save. A request already pending covers this one.
func (w *writer) request() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// close stops the loop and waits for the final save to finish.
func (w *writer) close() {
	close(w.stop)
	<-w.done
}
