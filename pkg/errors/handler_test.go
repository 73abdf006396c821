package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestReportSendsEmbed(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewErrorHandler(srv.URL, nil)
	defer h.Stop()

	h.Report(ReportErrorOptions{Error: "DB", Message: "insert failed", Module: "ActionLog"})

	select {
	case body := <-bodies:
		for _, want := range []string{"Error DB", "insert failed", "PancyMod | ActionLog"} {
			if !strings.Contains(body, want) {
				t.Errorf("report body %q does not contain %q", body, want)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not called")
	}
}

func TestReportWithoutWebhook(t *testing.T) {
	h := NewErrorHandler("", nil)
	defer h.Stop()

	// Must return without attempting a request.
	h.Report(ReportErrorOptions{Error: "x", Message: "y"})
}

func TestIncrementError(t *testing.T) {
	h := NewErrorHandler("", nil)
	defer h.Stop()

	h.IncrementError()
	h.IncrementError()

	if got := h.ErrorCount(); got < 1 || got > 2 {
		t.Errorf("ErrorCount() = %d, want 1..2 (window may reset)", got)
	}
}

func TestShutdownOnErrorBurst(t *testing.T) {
	exited := make(chan int, 1)
	var shutdownCalled bool
	var mu sync.Mutex

	h := &ErrorHandler{
		stopChan: make(chan struct{}),
		shutdownFunc: func() {
			mu.Lock()
			shutdownCalled = true
			mu.Unlock()
		},
		exitFunc:      func(code int) { exited <- code },
		httpClient:    http.DefaultClient,
		maxErrors:     2,
		resetInterval: time.Hour,
		checkInterval: 10 * time.Millisecond,
	}
	h.start()
	defer h.Stop()

	for i := 0; i < 3; i++ {
		h.IncrementError()
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not shut down after the error burst")
	}

	mu.Lock()
	defer mu.Unlock()
	if !shutdownCalled {
		t.Error("shutdown hook was not called")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer RecoverMiddleware()()
		panic("boom")
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not recover")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	h := NewErrorHandler("", nil)
	h.Stop()
	h.Stop()
}
