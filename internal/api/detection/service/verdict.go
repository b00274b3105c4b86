package detectionService

import (
	"strconv"
	"strings"

	"DeepfakeDetector/internal/api/detection"
	"DeepfakeDetector/internal/entity"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Upstreams disagree on the field name; the first present one wins.
var probabilityKeys = []string{"ai_probability", "deepfake_probability", "probability", "score"}

// ParseVerdict locates a JSON object inside free-form model output. When none parses it
// returns the degraded verdict and false.
func ParseVerdict(content string) (detection.RawVerdict, bool) {
	for _, candidate := range jsonCandidates(content) {
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
			continue
		}
		return verdictFromFields(fields), true
	}
	return degradedVerdict(), false
}

// Normalize turns a verdict into the response record.
func Normalize(v detection.RawVerdict) entity.DetectionResult {
	// Only a missing probability is neutral. An explicit 0 stays 0 so a confident
	// "real" answer is not reported as a coin flip.
	p := detection.NeutralProbability
	if v.Probability != nil {
		p = *v.Probability
	}

	result := entity.NewDetectionResult(entity.ScoreFromProbability(p))
	if label, ok := entity.ParseConfidence(v.Confidence); ok {
		result.Confidence = label
	}

	result.Reasoning = strings.TrimSpace(v.Reasoning)
	if result.Reasoning == "" {
		result.Reasoning = detection.DefaultReasoning
	}

	return result
}

func degradedVerdict() detection.RawVerdict {
	p := detection.NeutralProbability
	return detection.RawVerdict{
		Probability: &p,
		Confidence:  string(entity.ConfidenceLow),
		Reasoning:   detection.DegradedReasoning,
	}
}

// jsonCandidates yields the first-to-last brace span, then the first balanced object.
func jsonCandidates(text string) []string {
	start := strings.Index(text, "{")
	if start < 0 {
		return nil
	}

	var out []string
	if end := strings.LastIndex(text, "}"); end > start {
		out = append(out, text[start:end+1])
	}
	if balanced, ok := firstBalancedObject(text[start:]); ok && (len(out) == 0 || balanced != out[0]) {
		out = append(out, balanced)
	}
	return out
}

func firstBalancedObject(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}

func verdictFromFields(fields map[string]interface{}) detection.RawVerdict {
	var v detection.RawVerdict

	for _, key := range probabilityKeys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if p, ok := toProbability(raw); ok {
			v.Probability = &p
			break
		}
	}

	v.Confidence, _ = fields["confidence"].(string)

	if reasoning, ok := fields["reasoning"].(string); ok {
		v.Reasoning = reasoning
	} else if explanation, ok := fields["explanation"].(string); ok {
		v.Reasoning = explanation
	}

	return v
}

func toProbability(raw interface{}) (float64, bool) {
	switch val := raw.(type) {
	case float64:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		if percent {
			f /= 100
		}
		return f, true
	default:
		return 0, false
	}
}
