package queue

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDispatcherRunsHandler(t *testing.T) {
	d := NewDispatcher(2, 8)
	d.Start()
	defer d.Stop()

	handler := d.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestDispatcherFullQueue(t *testing.T) {
	// No workers started, so a queued task stays put and fills the single
	// slot.
	d := NewDispatcher(1, 1)
	d.tasks <- &Task{done: make(chan struct{})}

	err := d.Submit(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil),
		func(w http.ResponseWriter, r *http.Request) {})
	if err != ErrQueueFull {
		t.Errorf("err = %v, want ErrQueueFull", err)
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	d := NewDispatcher(1, 4)
	d.Start()
	defer d.Stop()

	w := httptest.NewRecorder()
	err := d.Submit(w, httptest.NewRequest("GET", "/", nil), func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 after panic", w.Code)
	}

	// The worker survives the panic.
	w2 := httptest.NewRecorder()
	if err := d.Submit(w2, httptest.NewRequest("GET", "/", nil), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}); err != nil {
		t.Fatalf("Submit after panic: %v", err)
	}
	if w2.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w2.Code)
	}
}
