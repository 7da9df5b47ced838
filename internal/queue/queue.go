package queue

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
)

var ErrQueueFull = errors.New("queue: dispatcher at capacity")

// Task is one queued HTTP request waiting for a worker. done is closed by the
// worker once the handler returns.
type Task struct {
	w       http.ResponseWriter
	r       *http.Request
	handler http.HandlerFunc
	done    chan struct{}
}

// Dispatcher fronts HTTP handlers with a bounded worker pool so a burst of
// requests degrades into queueing instead of unbounded goroutine growth.
type Dispatcher struct {
	tasks   chan *Task
	workers int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc

	// DepthChanged, when set, receives the queue depth after every enqueue
	// and dequeue. Used to feed the queue depth gauge.
	DepthChanged func(depth int)
}

func NewDispatcher(workers, capacity int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		tasks:   make(chan *Task, capacity),
		workers: workers,
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.started = true

	for i := 0; i < d.workers; i++ {
		go d.worker(ctx)
	}
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return
	}
	d.cancel()
	d.started = false
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-d.tasks:
			d.reportDepth()
			d.run(task)
		}
	}
}

func (d *Dispatcher) run(task *Task) {
	defer close(task.done)
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("queue: handler panic: %v", rec)
			http.Error(task.w, "internal server error", http.StatusInternalServerError)
		}
	}()
	task.handler(task.w, task.r)
}

// Submit enqueues the request and blocks until a worker has finished it, so
// the caller can return only after the response is written.
func (d *Dispatcher) Submit(w http.ResponseWriter, r *http.Request, handler http.HandlerFunc) error {
	task := &Task{w: w, r: r, handler: handler, done: make(chan struct{})}
	select {
	case d.tasks <- task:
		d.reportDepth()
	default:
		return ErrQueueFull
	}

	select {
	case <-task.done:
		return nil
	case <-r.Context().Done():
		// The worker may still be running; the ResponseWriter stays valid
		// until the handler returns, so just report the disconnect.
		return r.Context().Err()
	}
}

// Middleware wraps a handler so every request passes through the pool.
func (d *Dispatcher) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Submit(w, r, next); err != nil {
			if errors.Is(err, ErrQueueFull) {
				http.Error(w, "server busy", http.StatusServiceUnavailable)
			}
		}
	}
}

func (d *Dispatcher) reportDepth() {
	if d.DepthChanged != nil {
		d.DepthChanged(len(d.tasks))
	}
}
