package errors

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRecoverMiddlewareWithoutHandler(t *testing.T) {
	func() {
		defer RecoverMiddleware()()
		panic("boom")
	}()
}

func TestHandlePanicCountsErrors(t *testing.T) {
	h := NewErrorHandler("", nil)
	defer h.Stop()

	h.HandlePanic("first")
	h.HandlePanic("second")

	if got := h.ErrorCount(); got != 2 {
		t.Errorf("ErrorCount() = %d, want 2", got)
	}
}

func TestReportPostsEmbed(t *testing.T) {
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body.Store(string(b))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h := NewErrorHandler(srv.URL, nil)
	defer h.Stop()

	h.Report(ReportErrorOptions{Error: "Store", Message: "sqlite: database is locked"})

	got, _ := body.Load().(string)
	if !strings.Contains(got, "Error Store") || !strings.Contains(got, "database is locked") {
		t.Errorf("webhook body = %q", got)
	}
}

func TestShutdownOnErrorBurst(t *testing.T) {
	shutdown := make(chan struct{})
	exited := make(chan int, 1)

	h := &ErrorHandler{
		stopChan:      make(chan struct{}),
		shutdownFunc:  func() { close(shutdown) },
		exit:          func(code int) { exited <- code },
		maxErrors:     2,
		resetInterval: time.Hour,
		checkInterval: 5 * time.Millisecond,
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
	case <-time.After(time.Second):
		t.Fatal("handler did not shut down")
	}
	select {
	case <-shutdown:
	default:
		t.Error("shutdownFunc was not called")
	}
}
