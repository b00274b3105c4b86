package detectionService

import (
	"testing"

	"DeepfakeDetector/internal/api/detection"
	"DeepfakeDetector/internal/entity"
)

func TestParseAndNormalize(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		parsed     bool
		score      int
		deepfake   bool
		confidence entity.Confidence
		reasoning  string
	}{
		{
			name:       "pure json",
			content:    `{"ai_probability":0.9,"confidence":"High","reasoning":"x"}`,
			parsed:     true,
			score:      90,
			deepfake:   true,
			confidence: entity.ConfidenceHigh,
			reasoning:  "x",
		},
		{
			name:       "prose wrapper",
			content:    `Here you go: {"ai_probability":0.2}`,
			parsed:     true,
			score:      20,
			confidence: entity.ConfidenceLow,
			reasoning:  detection.DefaultReasoning,
		},
		{
			name:       "markdown fence",
			content:    "```json\n{\"ai_probability\": 0.7, \"reasoning\": \"soft edges\"}\n```",
			parsed:     true,
			score:      70,
			deepfake:   true,
			confidence: entity.ConfidenceMedium,
			reasoning:  "soft edges",
		},
		{
			name:       "trailing prose with braces",
			content:    `{"ai_probability":0.85} Note: {this is not json}`,
			parsed:     true,
			score:      85,
			deepfake:   true,
			confidence: entity.ConfidenceHigh,
			reasoning:  detection.DefaultReasoning,
		},
		{
			name:       "braces inside strings",
			content:    `{"ai_probability":0.6,"reasoning":"looks like {a} render"} trailing }`,
			parsed:     true,
			score:      60,
			deepfake:   true,
			confidence: entity.ConfidenceMedium,
			reasoning:  "looks like {a} render",
		},
		{
			name:       "label overrides derived confidence",
			content:    `{"ai_probability":0.95,"confidence":"low"}`,
			parsed:     true,
			score:      95,
			deepfake:   true,
			confidence: entity.ConfidenceLow,
			reasoning:  detection.DefaultReasoning,
		},
		{
			name:       "unknown label falls back to derived",
			content:    `{"ai_probability":0.55,"confidence":"certain"}`,
			parsed:     true,
			score:      55,
			deepfake:   true,
			confidence: entity.ConfidenceMedium,
			reasoning:  detection.DefaultReasoning,
		},
		{
			name:       "alternate key as percentage string",
			content:    `{"probability":"72%","explanation":"warped hands"}`,
			parsed:     true,
			score:      72,
			deepfake:   true,
			confidence: entity.ConfidenceMedium,
			reasoning:  "warped hands",
		},
		{
			name:       "explicit zero is kept",
			content:    `{"ai_probability":0}`,
			parsed:     true,
			score:      0,
			confidence: entity.ConfidenceLow,
			reasoning:  detection.DefaultReasoning,
		},
		{
			name:       "missing probability is neutral",
			content:    `{"reasoning":"hard to tell"}`,
			parsed:     true,
			score:      50,
			confidence: entity.ConfidenceLow,
			reasoning:  "hard to tell",
		},
		{
			name:       "not json at all",
			content:    "not json at all",
			parsed:     false,
			score:      50,
			confidence: entity.ConfidenceLow,
			reasoning:  detection.DegradedReasoning,
		},
		{
			name:       "broken object",
			content:    `{"ai_probability": 0.9,`,
			parsed:     false,
			score:      50,
			confidence: entity.ConfidenceLow,
			reasoning:  detection.DegradedReasoning,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			verdict, parsed := ParseVerdict(tc.content)
			if parsed != tc.parsed {
				t.Fatalf("expected parsed=%v got %v", tc.parsed, parsed)
			}

			got := Normalize(verdict)
			want := entity.DetectionResult{
				Score:      tc.score,
				IsDeepfake: tc.deepfake,
				Confidence: tc.confidence,
				Reasoning:  tc.reasoning,
			}
			if got != want {
				t.Fatalf("expected %+v got %+v", want, got)
			}
		})
	}
}

func TestFirstBalancedObject(t *testing.T) {
	got, ok := firstBalancedObject(`{"a":{"b":"}"}} tail}`)
	if !ok || got != `{"a":{"b":"}"}}` {
		t.Fatalf("unexpected result %q %v", got, ok)
	}
	if _, ok := firstBalancedObject(`{"open":`); ok {
		t.Fatalf("unterminated object must not match")
	}
}
