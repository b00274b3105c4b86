package detection

// DetectRequest carries one image as a data URL or bare base64.
type DetectRequest struct {
	Image string `json:"image" form:"image" validate:"required"`
}

// RawVerdict is the upstream answer after it has been located and parsed.
type RawVerdict struct {
	Probability *float64
	Confidence  string
	Reasoning   string
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
	Details string `json:"details,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

const (
	DefaultReasoning   = "Analysis complete"
	DegradedReasoning  = "unable to parse AI response"
	NeutralProbability = 0.5
)
