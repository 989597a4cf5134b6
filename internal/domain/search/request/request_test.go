package request

import (
	"strings"
	"testing"

	"github.com/intramind/intramind/internal/domain/search/filter"
	"github.com/intramind/intramind/internal/domain/search/mode"
)

func emptyFilters() filter.Expression {
	e, _ := filter.NewExpression(nil, nil, nil)
	return e
}

func TestNew_Defaults(t *testing.T) {
	r, err := New("hello", "", emptyFilters(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Mode() != mode.Semantic {
		t.Errorf("Mode() = %q, want semantic (default)", r.Mode())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if r.TopK() != DefaultLimit*candidateFactor {
		t.Errorf("TopK() = %d, want %d", r.TopK(), DefaultLimit*candidateFactor)
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New("query", mode.Keyword, emptyFilters(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode() != mode.Keyword {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.Limit() != 20 {
		t.Errorf("Limit() = %d", r.Limit())
	}
	if r.TopK() != 80 {
		t.Errorf("TopK() = %d, want 80", r.TopK())
	}
}

func TestNew_EmptyQuery(t *testing.T) {
	_, err := New("", mode.Semantic, emptyFilters(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_QueryTooLong(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), mode.Semantic, emptyFilters(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_QueryAtMaxLength(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength), mode.Semantic, emptyFilters(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New("query", "invalid", emptyFilters(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid search mode") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_AllValidModes(t *testing.T) {
	for _, m := range []mode.Mode{mode.Hybrid, mode.Semantic, mode.Keyword} {
		_, err := New("q", m, emptyFilters(), 10)
		if err != nil {
			t.Errorf("unexpected error for mode %q: %v", m, err)
		}
	}
}

func TestNew_NegativeLimit(t *testing.T) {
	_, err := New("q", mode.Semantic, emptyFilters(), -1)
	if err == nil {
		t.Fatal("expected error for negative limit")
	}
	if !strings.Contains(err.Error(), "negative") {
		t.Errorf("error = %q", err)
	}
}

func TestNew_LimitClamping(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
		wantTopK  int
	}{
		{"zero limit", 0, DefaultLimit, DefaultLimit * candidateFactor},
		{"normal", 50, 50, 200},
		{"over max", 200, MaxLimit, MaxLimit * candidateFactor},
		{"exactly max", MaxLimit, MaxLimit, MaxLimit * candidateFactor},
		{"one", 1, 1, candidateFactor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New("q", mode.Semantic, emptyFilters(), tt.limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Limit() != tt.wantLimit {
				t.Errorf("Limit() = %d, want %d", r.Limit(), tt.wantLimit)
			}
			if r.TopK() != tt.wantTopK {
				t.Errorf("TopK() = %d, want %d", r.TopK(), tt.wantTopK)
			}
		})
	}
}

func TestNew_TopKCappedAtMax(t *testing.T) {
	// MaxLimit*candidateFactor is 400, below MaxTopK, so the ceiling only
	// matters if candidateFactor grows. Guard the invariant anyway.
	r, err := New("q", mode.Hybrid, emptyFilters(), MaxLimit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TopK() > MaxTopK {
		t.Errorf("TopK() = %d, exceeds MaxTopK %d", r.TopK(), MaxTopK)
	}
}

func TestNew_WithFilters(t *testing.T) {
	m, _ := filter.NewMatch("lang", "go")
	expr, _ := filter.NewExpression([]filter.Condition{m}, nil, nil)

	r, err := New("query", mode.Semantic, expr, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Filters().IsEmpty() {
		t.Error("Filters().IsEmpty() = true, want false")
	}
}
