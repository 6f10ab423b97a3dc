package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAllowRefills(t *testing.T) {
	now := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("a", 3, 1) {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("a", 3, 1) {
		t.Fatal("bucket should be empty")
	}
	if !l.Allow("b", 3, 1) {
		t.Fatal("other keys have their own bucket")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a", 3, 1) {
		t.Fatal("one token should have refilled")
	}
	if l.Allow("a", 3, 1) {
		t.Fatal("only half a token left")
	}

	now = now.Add(time.Hour)
	if n := l.Prune(time.Minute); n != 2 {
		t.Fatalf("pruned %d buckets, want 2", n)
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	l := New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, l.Middleware(1, 0.001))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestJanitorPrunesIdleBuckets(t *testing.T) {
	l := New()
	l.Allow("a", 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Janitor(ctx, 5*time.Millisecond, time.Nanosecond)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.m) != 0 {
		t.Fatalf("buckets = %d, want 0", len(l.m))
	}
}
