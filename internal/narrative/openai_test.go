package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewOpenAIGenerator_NoKey(t *testing.T) {
	if _, err := NewOpenAIGenerator(""); !errors.Is(err, ErrNoCredential) {
		t.Errorf("err = %v, want ErrNoCredential", err)
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "hello" {
			t.Errorf("messages = %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Portfolio looks balanced.  "}}]}`))
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator("sk-test", WithBaseURL(srv.URL+"/v1/"))
	if err != nil {
		t.Fatal(err)
	}
	text, err := g.Generate(context.Background(), Request{System: "sys", Prompt: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if text != "Portfolio looks balanced." {
		t.Errorf("text = %q", text)
	}
}

func TestOpenAIGenerator_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	g, _ := NewOpenAIGenerator("k", WithBaseURL(srv.URL), WithRetry(2, time.Millisecond))
	text, err := g.Generate(context.Background(), Request{Prompt: "p"})
	if err != nil || text != "ok" {
		t.Fatalf("Generate = %q, %v", text, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestOpenAIGenerator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		calls  int32
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, ErrNoCredential, 1},
		{"bad request", http.StatusBadRequest, `{"error":"bad"}`, ErrGeneratorDown, 1},
		{"always down", http.StatusBadGateway, `down`, ErrGeneratorDown, 2},
		{"empty completion", http.StatusOK, `{"choices":[]}`, ErrGeneratorDown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, _ := NewOpenAIGenerator("k", WithBaseURL(srv.URL), WithRetry(1, time.Millisecond))
			_, err := g.Generate(context.Background(), Request{Prompt: "p"})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if calls != tt.calls {
				t.Errorf("calls = %d, want %d", calls, tt.calls)
			}
		})
	}
}
