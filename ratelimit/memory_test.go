package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryStoreCeiling(t *testing.T) {
	s := NewMemoryStore(Config{Window: 15 * time.Minute, Limit: 100})
	defer s.Close()

	ctx := context.Background()

	for i := 1; i <= 100; i++ {
		d, err := s.Take(ctx, "credentials:1.2.3.4")
		if err != nil {
			t.Fatalf("Take #%d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request #%d denied below ceiling", i)
		}
		if d.Remaining != 100-i {
			t.Errorf("request #%d: remaining = %d, want %d", i, d.Remaining, 100-i)
		}
	}

	// The 101st request in the same window must be rejected.
	d, err := s.Take(ctx, "credentials:1.2.3.4")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if d.Allowed {
		t.Error("101st request allowed over ceiling")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", d.RetryAfter)
	}

	// Other keys are unaffected.
	if d, _ := s.Take(ctx, "credentials:5.6.7.8"); !d.Allowed {
		t.Error("separate key denied")
	}
}

func TestMemoryStoreWindowReset(t *testing.T) {
	s := NewMemoryStore(Config{Window: 15 * time.Minute, Limit: 2})
	defer s.Close()

	base := time.Now()
	s.now = func() time.Time { return base }

	ctx := context.Background()
	s.Take(ctx, "k")
	s.Take(ctx, "k")
	if d, _ := s.Take(ctx, "k"); d.Allowed {
		t.Fatal("over-ceiling request allowed")
	}

	// Still inside the window: stays denied.
	s.now = func() time.Time { return base.Add(14 * time.Minute) }
	if d, _ := s.Take(ctx, "k"); d.Allowed {
		t.Fatal("request allowed before window elapsed")
	}

	// First request after the window elapses succeeds.
	s.now = func() time.Time { return base.Add(15 * time.Minute) }
	d, _ := s.Take(ctx, "k")
	if !d.Allowed {
		t.Fatal("request denied after window reset")
	}
	if d.Remaining != 1 {
		t.Errorf("remaining after reset = %d, want 1", d.Remaining)
	}
}

func TestMemoryStoreConcurrentCeiling(t *testing.T) {
	const limit = 50
	s := NewMemoryStore(Config{Window: time.Minute, Limit: limit})
	defer s.Close()

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 4*limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.Take(context.Background(), "k")
			if err != nil {
				t.Error(err)
				return
			}
			if d.Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("allowed = %d, want exactly %d", allowed, limit)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore(Config{Window: time.Minute, Limit: 5})
	defer s.Close()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Take(context.Background(), "stale")
	s.Take(context.Background(), "fresh")

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	s.Take(context.Background(), "fresh") // rolls into a fresh window
	s.sweep()

	s.mu.Lock()
	_, staleKept := s.counters["stale"]
	_, freshKept := s.counters["fresh"]
	s.mu.Unlock()

	if staleKept {
		t.Error("expired counter not evicted")
	}
	if !freshKept {
		t.Error("live counter evicted")
	}
}

func TestMiddlewareThrottles(t *testing.T) {
	s := NewMemoryStore(Config{Window: 15 * time.Minute, Limit: 3})
	defer s.Close()

	router := gin.New()
	router.POST("/login", Middleware(s, "credentials", nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request #%d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), "too many attempts, retry after") {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", w.Header().Get("X-RateLimit-Remaining"))
	}
}
