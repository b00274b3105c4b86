package entity

import (
	"math"
	"strings"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// DeepfakeThreshold is the score above which an image is reported as a deepfake.
const DeepfakeThreshold = 50

const highConfidenceThreshold = 80

type DetectionResult struct {
	Score      int        `json:"score"`
	IsDeepfake bool       `json:"isDeepfake"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
}

// NewDetectionResult derives every label from score alone.
func NewDetectionResult(score int) DetectionResult {
	score = ClampScore(score)
	return DetectionResult{
		Score:      score,
		IsDeepfake: score > DeepfakeThreshold,
		Confidence: ConfidenceFromScore(score),
	}
}

func ConfidenceFromScore(score int) Confidence {
	switch {
	case score > highConfidenceThreshold:
		return ConfidenceHigh
	case score > DeepfakeThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseConfidence accepts an upstream label in any case.
func ParseConfidence(label string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "high":
		return ConfidenceHigh, true
	case "medium":
		return ConfidenceMedium, true
	case "low":
		return ConfidenceLow, true
	default:
		return "", false
	}
}

// ScoreFromProbability maps a 0-1 probability to 0-100. Values in (1,100] are read as percentages.
func ScoreFromProbability(p float64) int {
	if math.IsNaN(p) {
		p = 0.5
	}
	if p > 1 && p <= 100 {
		p /= 100
	}
	p = math.Max(0, math.Min(1, p))
	return ClampScore(int(math.Round(p * 100)))
}

func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
