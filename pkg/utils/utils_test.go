package utils

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"DeepfakeDetector/pkg/vision"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDecodeImagePayload(t *testing.T) {
	u := New()
	b64 := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name     string
		payload  string
		wantMIME string
		wantErr  error
	}{
		{"data url", "data:image/jpeg;base64," + b64, "image/jpeg", nil},
		{"data url upper case", "data:IMAGE/WEBP;BASE64," + b64, "image/webp", nil},
		{"raw base64 sniffed", b64, "image/png", nil},
		{"raw base64 unpadded", base64.RawStdEncoding.EncodeToString(pngHeader), "image/png", nil},
		{"wrapped lines", b64[:8] + "\n" + b64[8:], "image/png", nil},
		{"blank", "   ", "", ErrEmptyImage},
		{"no comma", "data:image/png;base64", "", ErrInvalidDataURL},
		{"not base64 data url", "data:text/plain,hello", "", ErrInvalidDataURL},
		{"garbage", "not*base64!", "", ErrInvalidBase64},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, err := u.DecodeImagePayload(tc.payload)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.MIMEType != tc.wantMIME {
				t.Fatalf("expected mime %q got %q", tc.wantMIME, img.MIMEType)
			}
			if len(img.Data) != len(pngHeader) {
				t.Fatalf("expected %d bytes got %d", len(pngHeader), len(img.Data))
			}
		})
	}
}

func TestValidateImage(t *testing.T) {
	u := New()
	img := vision.Image{MIMEType: "image/png", Data: make([]byte, 10)}

	if err := u.ValidateImage(img, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := u.ValidateImage(img, 5); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge got %v", err)
	}
	img.MIMEType = "application/pdf"
	if err := u.ValidateImage(img, 0); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage got %v", err)
	}
}

func TestImageFromBytesRoundTripsDataURL(t *testing.T) {
	u := New()
	img, err := u.ImageFromBytes(pngHeader)
	if err != nil {
		t.Fatalf("from bytes: %v", err)
	}
	back, err := u.DecodeImagePayload(img.DataURL())
	if err != nil {
		t.Fatalf("decode data url: %v", err)
	}
	if back.MIMEType != "image/png" {
		t.Fatalf("expected image/png got %s", back.MIMEType)
	}
	if _, err := u.ImageFromBytes(nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage got %v", err)
	}
}

func TestNewULIDFromTimestamp(t *testing.T) {
	id, err := New().NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("ulid: %v", err)
	}
	if len(id) != 26 {
		t.Fatalf("expected 26 chars got %d", len(id))
	}
}
