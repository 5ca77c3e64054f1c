package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(rps, burst, KeyByUserOrIP())
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func hit(r *gin.Engine, user string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if user != "" {
		req.Header.Set("X-User-Name", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_BurstThen429(t *testing.T) {
	r := rateLimitedRouter(0.001, 2) // effectively no refill during the test

	if code := hit(r, "alice"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := hit(r, "alice"); code != http.StatusOK {
		t.Fatalf("second request = %d", code)
	}
	if code := hit(r, "alice"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", code)
	}
}

func TestRateLimiter_PerUserBuckets(t *testing.T) {
	r := rateLimitedRouter(0.001, 1)

	if code := hit(r, "alice"); code != http.StatusOK {
		t.Fatalf("alice first = %d", code)
	}
	if code := hit(r, "alice"); code != http.StatusTooManyRequests {
		t.Fatalf("alice second = %d, want 429", code)
	}
	// A different caller has its own bucket.
	if code := hit(r, "bob"); code != http.StatusOK {
		t.Fatalf("bob first = %d, want 200", code)
	}
}

func TestRateLimiter_DisabledWhenZero(t *testing.T) {
	r := rateLimitedRouter(0, 1)
	for i := 0; i < 10; i++ {
		if code := hit(r, "alice"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200 (limiter disabled)", i, code)
		}
	}
}

func TestKeyByUserOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := KeyByUserOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-User-Name", "alice")
	if got := key(c); got != "u:alice" {
		t.Fatalf("key = %q, want u:alice", got)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.RemoteAddr = "10.1.2.3:5555"
	if got := key(c2); got != "ip:10.1.2.3" {
		t.Fatalf("key = %q, want ip:10.1.2.3", got)
	}
}
