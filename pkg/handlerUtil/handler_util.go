package handlerUtil

import (
	"errors"

	"DeepfakeDetector/internal/api/detection"
	"DeepfakeDetector/pkg/log"
	"DeepfakeDetector/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ErrorResponse = detection.ErrorResponse

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Resolve maps an error to the status and body the caller sees.
func (h *ErrorHandler) Resolve(err error) (int, ErrorResponse) {
	var upErr *detection.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.HTTPStatus(), ErrorResponse{
			Error:   "AI analysis failed",
			Message: upErr.Error(),
			Status:  upErr.StatusCode,
			Details: upErr.Body,
		}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		return respErr.Code, ErrorResponse{
			Error:   respErr.Err.Error(),
			Message: respErr.Message(),
		}
	}

	msg := err.Error()
	if msg == "" {
		msg = "An unexpected error occurred"
	}
	return fiber.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: msg,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	status, body := h.Resolve(err)

	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"code":       status,
		"path":       path,
		"operation":  operation,
	}

	var upErr *detection.UpstreamError
	switch {
	case errors.As(err, &upErr):
		fields["upstream_status"] = upErr.StatusCode
		fields["upstream_body"] = upErr.Body
		h.logger.WithFields(fields).Error("AI API error")
	case status >= fiber.StatusInternalServerError:
		body.TraceID = log.ErrorWithTraceID(h.logger, fields, "Error in deepfake detection")
	default:
		h.logger.WithFields(fields).Warn("Operation failed with error response")
	}

	return c.Status(status).JSON(body)
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, kind error, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	status, body := h.Resolve(kind)
	body.Message = "Validation failed: " + err.Error()
	body.Code = "VALIDATION_ERROR"

	return c.Status(status).JSON(body)
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
		Code:    "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
