// Package vision is the provider-neutral boundary between the detection service
// and whichever multimodal inference API is configured.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Prompt asks the model for a JSON verdict with a probability, a label and a short explanation.
const Prompt = "Analyze this image carefully and determine if it appears to be AI-generated, manipulated, or a deepfake. " +
	"Consider factors like: unnatural artifacts, inconsistent lighting, distorted features, unrealistic textures, or other signs of AI generation. " +
	"Provide your analysis as a JSON object with: 1) 'ai_probability' (0-1 scale, where 1 is definitely AI-generated), " +
	"2) 'confidence' (High/Medium/Low), 3) 'reasoning' (brief explanation). Return ONLY valid JSON, no other text."

var (
	ErrMissingCredential = errors.New("detector API key is not configured")
	ErrEmptyContent      = errors.New("no content in AI response")
)

// Image is a decoded upload. Providers encode Data however their wire format needs.
type Image struct {
	MIMEType string
	Data     []byte
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64()
}

// Detector sends one image to the upstream model and returns its raw text answer.
type Detector interface {
	Name() string
	Model() string
	Detect(ctx context.Context, img Image) (string, error)
}

// StatusError is returned when the upstream answered with a non-success status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s upstream returned status %d", e.Provider, e.StatusCode)
}
