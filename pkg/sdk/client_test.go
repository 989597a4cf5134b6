package intramind

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// --- Helpers ---

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// --- Tests ---

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestNew_RejectsInvalidURL(t *testing.T) {
	for _, u := range []string{"localhost:6379", "://bad", "/just/a/path"} {
		if _, err := New(u); err == nil {
			t.Errorf("expected error for base URL %q", u)
		}
	}
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	}, WithAPIKey("secret-key"))

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret-key")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header")
	}
}

func TestClient_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestPing_UsesLiveness(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if gotPath != "/health/liveness" {
		t.Errorf("path = %q, want /health/liveness", gotPath)
	}
}

func TestAPIError_SentinelMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"invalid request", http.StatusBadRequest, "invalid_request", ErrInvalidRequest},
		{"unauthorized", http.StatusUnauthorized, "unauthorized", ErrUnauthorized},
		{"not found", http.StatusNotFound, "not_found", ErrNotFound},
		{"already exists", http.StatusConflict, "already_exists", ErrAlreadyExists},
		{"quota", http.StatusTooManyRequests, "quota_exceeded", ErrQuotaExceeded},
		{"unavailable", http.StatusServiceUnavailable, "service_unavailable", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tt.status, tt.code, "boom")
			})

			_, err := c.Collections().Get(context.Background(), "kb")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError in chain, got %T", err)
			}
			if apiErr.Code != tt.code || apiErr.StatusCode != tt.status {
				t.Errorf("apiErr = %+v, want code %q status %d", apiErr, tt.code, tt.status)
			}
			if apiErr.Message != "boom" {
				t.Errorf("message = %q, want boom", apiErr.Message)
			}
		})
	}
}

func TestAPIError_FallsBackToStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>bad gateway page</html>"))
	})

	_, err := c.Collections().Get(context.Background(), "kb")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != "" {
		t.Errorf("code = %q, want empty for non-envelope body", apiErr.Code)
	}
	if apiErr.Message != http.StatusText(http.StatusServiceUnavailable) {
		t.Errorf("message = %q, want status text", apiErr.Message)
	}
}

func TestHealth_DecodesDegradedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy","checks":{"gateway":"ok","vectordb":"error"}}`))
	})

	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", h.Status)
	}
	if h.Checks["vectordb"] != "error" {
		t.Errorf("checks[vectordb] = %q, want error", h.Checks["vectordb"])
	}
}

func TestUsage_ForwardsPeriod(t *testing.T) {
	var gotPath, gotPeriod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPeriod = r.URL.Query().Get("period")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"period":"month","usage":{"embeddingRequests":12,"tokens":480},"budget":{"tokensLimit":0,"tokensRemaining":-1,"isExhausted":false}}`))
	})

	report, err := c.Usage(context.Background(), PeriodMonth)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}

	if gotPath != "/v1/usage" || gotPeriod != "month" {
		t.Errorf("request = %s?period=%s, want /v1/usage?period=month", gotPath, gotPeriod)
	}
	if report.Usage.Tokens != 480 {
		t.Errorf("tokens = %d, want 480", report.Usage.Tokens)
	}
	if report.Budget.TokensRemaining != -1 {
		t.Errorf("remaining = %d, want -1 (unlimited)", report.Budget.TokensRemaining)
	}
}
