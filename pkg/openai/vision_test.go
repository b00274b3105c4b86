package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"DeepfakeDetector/pkg/vision"
)

var testImage = vision.Image{MIMEType: "image/png", Data: []byte("png-bytes")}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   DefaultModel,
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
	return string(body)
}

func TestDetectSendsImageAndReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		body := string(raw)
		if !strings.Contains(body, `"model":"`+DefaultModel+`"`) {
			t.Errorf("model missing from request: %s", body)
		}
		if !strings.Contains(body, testImage.DataURL()) {
			t.Errorf("image data URL missing from request")
		}
		if !strings.Contains(body, "ai_probability") {
			t.Errorf("prompt missing from request")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completion(`{"ai_probability":0.9}`))
	}))
	defer srv.Close()

	d := New(Config{APIKey: "secret", BaseURL: srv.URL})
	got, err := d.Detect(context.Background(), testImage)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if got != `{"ai_probability":0.9}` {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestDetectWithoutKeyNeverCallsUpstream(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Detect(context.Background(), testImage)
	if !errors.Is(err, vision.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential got %v", err)
	}
	if called {
		t.Fatalf("upstream must not be called without a key")
	}
}

func TestDetectUpstreamStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantBody string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit"}}`, `"message":"rate limited"`},
		{
			name:     "api error keeps type and code",
			status:   http.StatusPaymentRequired,
			body:     `{"error":{"message":"Payment required, add credits","type":"payment_required","code":"insufficient_credits"}}`,
			wantBody: `"type":"payment_required"`,
		},
		{"api error code survives", http.StatusPaymentRequired, `{"error":{"message":"m","type":"t","code":"insufficient_credits"}}`, `"code":"insufficient_credits"`},
		{"plain error", http.StatusPaymentRequired, `payment required`, "payment required"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := New(Config{APIKey: "k", BaseURL: srv.URL}).Detect(context.Background(), testImage)
			var statusErr *vision.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError got %v", err)
			}
			if statusErr.StatusCode != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, statusErr.StatusCode)
			}
			if !strings.Contains(statusErr.Body, tc.wantBody) {
				t.Fatalf("expected body to contain %q got %q", tc.wantBody, statusErr.Body)
			}
		})
	}
}

func TestDetectEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	_, err := New(Config{APIKey: "k", BaseURL: srv.URL}).Detect(context.Background(), testImage)
	if !errors.Is(err, vision.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent got %v", err)
	}
}

func TestDetectTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Config{APIKey: "k", BaseURL: url}).Detect(context.Background(), testImage)
	if err == nil {
		t.Fatalf("expected an error")
	}
	var statusErr *vision.StatusError
	if errors.As(err, &statusErr) {
		t.Fatalf("transport failures must not look like upstream statuses")
	}
}
