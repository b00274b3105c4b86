package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DeepfakeDetector/pkg/vision"
)

var testImage = vision.Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func newStubbedClient(t *testing.T, timeout time.Duration, handler http.HandlerFunc) vision.Detector {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d, err := NewGeminiClient(context.Background(), Config{
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Timeout:  timeout,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { _ = d.(io.Closer).Close() })
	return d
}

func TestDetectWithoutKey(t *testing.T) {
	d, err := NewGeminiClient(context.Background(), Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if d.Model() != DefaultModel {
		t.Fatalf("expected default model got %s", d.Model())
	}

	_, err = d.Detect(context.Background(), testImage)
	if !errors.Is(err, vision.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential got %v", err)
	}

	if closer, ok := d.(io.Closer); !ok || closer.Close() != nil {
		t.Fatalf("expected a no-op Close")
	}
}

func TestDetectReturnsCandidateText(t *testing.T) {
	var gotPath string
	d := newStubbedClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ai_probability\":"},{"text":"0.3}"}]},"finishReason":"STOP"}]}`)
	})

	content, err := d.Detect(context.Background(), testImage)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if content != `{"ai_probability":0.3}` {
		t.Fatalf("unexpected content %q", content)
	}
	if !strings.HasSuffix(gotPath, DefaultModel+":generateContent") {
		t.Fatalf("unexpected request path %q", gotPath)
	}
}

func TestDetectUpstreamStatus(t *testing.T) {
	d := newStubbedClient(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)
	})

	_, err := d.Detect(context.Background(), testImage)

	var statusErr *vision.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError got %v", err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", statusErr.StatusCode)
	}
	if !strings.Contains(statusErr.Body, "PERMISSION_DENIED") {
		t.Fatalf("expected raw body, got %q", statusErr.Body)
	}
}

func TestDetectHonoursTimeout(t *testing.T) {
	d := newStubbedClient(t, 100*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	start := time.Now()
	_, err := d.Detect(context.Background(), testImage)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("detect was not cut off by the timeout, took %v", elapsed)
	}

	var statusErr *vision.StatusError
	if errors.As(err, &statusErr) {
		t.Fatalf("a timeout must not look like an upstream status, got %v", statusErr)
	}
}
