package detection

import (
	"fmt"
	"net/http"

	"DeepfakeDetector/pkg/response"
)

var (
	ErrNoImage             = response.NewError(http.StatusBadRequest, "No image provided")
	ErrInvalidRequestBody  = response.NewError(http.StatusBadRequest, "Invalid request body")
	ErrInvalidImage        = response.NewError(http.StatusBadRequest, "Invalid image payload")
	ErrMisconfiguration    = response.NewError(http.StatusInternalServerError, "Detector is not configured")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "Internal server error")
)

// UpstreamError reports a non-success answer from the inference service.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI analysis failed: %s returned status %d", e.Provider, e.StatusCode)
}

// HTTPStatus is the status relayed to the caller; anything that is not an error status becomes 502.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode < 400 || e.StatusCode > 599 {
		return http.StatusBadGateway
	}
	return e.StatusCode
}
