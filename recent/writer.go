package recent

import (
	"context"
	"sync"

	"phocaforme/model"
)

// Recorder is what a listing view needs from the history.
type Recorder interface {
	Record(item model.ViewedItem)
	Forget(id model.ID)
}

var (
	_ Recorder = (*Cache)(nil)
	_ Recorder = (*Writer)(nil)
)

type request struct {
	record *model.ViewedItem
	forget model.ID
	done   chan struct{}
}

// Writer funnels history updates through one goroutine so overlapping
// fetches cannot interleave their read-modify-write cycles.
type Writer struct {
	cache *Cache
	reqs  chan request

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewWriter(cache *Cache, buffer int) *Writer {
	if buffer < 0 {
		buffer = 0
	}
	w := &Writer{
		cache: cache,
		reqs:  make(chan request, buffer),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Writer) run() {
	defer w.wg.Done()
	for req := range w.reqs {
		switch {
		case req.record != nil:
			w.cache.Record(*req.record)
		case req.forget != "":
			w.cache.Forget(req.forget)
		}
		if req.done != nil {
			close(req.done)
		}
	}
}

// send reports false once the writer is closed.
func (w *Writer) send(req request) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	w.reqs <- req
	return true
}

func (w *Writer) Record(item model.ViewedItem) {
	if !w.send(request{record: &item}) {
		w.cache.log.WithField("id", item.ID).Debug("writer closed, dropping viewed item")
	}
}

func (w *Writer) Forget(id model.ID) {
	if id == "" {
		return
	}
	if !w.send(request{forget: id}) {
		w.cache.log.WithField("id", id).Debug("writer closed, dropping forget")
	}
}

// Flush waits until every update enqueued before the call has been applied.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !w.send(request{done: done}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies pending updates and stops the writer. It is safe to call
// more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.reqs)
	}
	w.mu.Unlock()
	w.wg.Wait()
	return nil
}
