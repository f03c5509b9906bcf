package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	return req
}

func TestDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.Client())
	resp, err := c.Do(newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"ok":true}` {
		t.Errorf("Unexpected body: %s", body)
	}
}

func TestDo_RetryAfter429(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(srv.Client())
	start := time.Now()
	resp, err := c.Do(newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if elapsed := time.Since(start); elapsed < 1*time.Second {
		t.Errorf("Expected to honor Retry-After of 1s, returned after %v", elapsed)
	}
}

func TestDo_RateLimitExhaustion(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.Client())
	_, err := c.Do(newRequest(t, srv.URL))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestDo_NonRetryableStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.Client())
	_, err := c.Do(newRequest(t, srv.URL))
	if err == nil {
		t.Fatal("Expected error for 404")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", statusErr.Code)
	}
	if attempts != 1 {
		t.Errorf("Expected no retries for 404, got %d attempts", attempts)
	}
}

func TestDo_TransportFailureExhaustion(t *testing.T) {
	// Server that immediately closes the connection
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("Hijacking not supported")
		}
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer srv.Close()

	c := New(srv.Client())
	start := time.Now()
	_, err := c.Do(newRequest(t, srv.URL))
	if err == nil {
		t.Fatal("Expected transport error")
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %T: %v", err, err)
	}
	if transportErr.Unwrap() == nil {
		t.Error("Expected TransportError to carry the last error")
	}
	// Backoff between 3 attempts: 1s + 2s
	if elapsed := time.Since(start); elapsed < 3*time.Second {
		t.Errorf("Expected exponential backoff of at least 3s, got %v", elapsed)
	}
}

func TestAdjustFromHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Discogs-Ratelimit", "60")
		w.Header().Set("X-Discogs-Ratelimit-Remaining", "55")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(srv.Client())
	resp, err := c.Do(newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	// (60s / 60) * 1.1 = 1.1s
	want := 1100 * time.Millisecond
	if got := c.Interval(); got != want {
		t.Errorf("Expected interval %v, got %v", want, got)
	}
}

func TestAdjustFromHeaders_LowRemaining(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Discogs-Ratelimit", "60")
		w.Header().Set("X-Discogs-Ratelimit-Remaining", "5")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(srv.Client())
	resp, err := c.Do(newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	// Doubled: (60s / 60) * 1.1 * 2 = 2.2s
	want := 2200 * time.Millisecond
	if got := c.Interval(); got != want {
		t.Errorf("Expected doubled interval %v, got %v", want, got)
	}
}

func TestAdjustFromHeaders_InvalidKeepsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Discogs-Ratelimit", "not-a-number")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := New(srv.Client())
	resp, err := c.Do(newRequest(t, srv.URL))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got := c.Interval(); got != 1*time.Second {
		t.Errorf("Expected default interval 1s, got %v", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	if got := parseRetryAfter(resp); got != 60*time.Second {
		t.Errorf("Expected 60s default, got %v", got)
	}

	resp.Header.Set("Retry-After", "5")
	if got := parseRetryAfter(resp); got != 5*time.Second {
		t.Errorf("Expected 5s, got %v", got)
	}

	resp.Header.Set("Retry-After", "garbage")
	if got := parseRetryAfter(resp); got != 60*time.Second {
		t.Errorf("Expected 60s fallback, got %v", got)
	}
}
