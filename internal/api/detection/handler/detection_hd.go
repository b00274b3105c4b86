package detectionHandler

import (
	"time"

	"DeepfakeDetector/internal/api/detection"
	contextPkg "DeepfakeDetector/pkg/context"
	"DeepfakeDetector/pkg/handlerUtil"
	"DeepfakeDetector/pkg/log"
	"DeepfakeDetector/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

func (h *DetectionHandler) Detect(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing deepfake detection request")

	var req detection.DetectRequest

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		req.Image, err = h.utils.ConvertFileToDataURL(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, response.WithDetails(detection.ErrInvalidImage, err.Error()), ctx.Path(), "convert_file")
		}
	} else {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, response.WithDetails(detection.ErrInvalidRequestBody, err.Error()), ctx.Path(), "parse_request_body")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, detection.ErrNoImage, err, ctx.Path())
	}

	result, err := h.detectionService.Detect(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_deepfake")
	}

	h.log.WithFields(log.Fields{
		"request_id":  requestID,
		"path":        ctx.Path(),
		"score":       result.Score,
		"is_deepfake": result.IsDeepfake,
	}).Info("Deepfake detection successful")

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

// handleDetectWebSocket answers every frame with one JSON message. Binary frames are raw
// image bytes, text frames are data URLs.
func (h *DetectionHandler) handleDetectWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(contextPkg.FiberRequestIDKey).(string)
	ctx := contextPkg.WithRequestID(context.Background(), requestID)
	errHandler := handlerUtil.New(h.log)

	h.log.WithField("request_id", requestID).Info("Detection WebSocket client connected")
	defer h.log.WithField("request_id", requestID).Info("Detection WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	if h.frameLimit > 0 {
		c.SetReadLimit(h.frameLimit)
	}

	maxReadTimeout := 120 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			// Oversized frames surface here as a read error after the 1009 close frame.
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Detection WebSocket error: %v", err)
			}
			break
		}

		var reply interface{}
		switch messageType {
		case websocket.BinaryMessage:
			img, err := h.utils.ImageFromBytes(message)
			if err != nil {
				_, reply = errHandler.Resolve(detection.ErrNoImage)
				break
			}
			result, err := h.detectionService.DetectImage(ctx, img)
			reply = h.frameReply(errHandler, requestID, result, err)
		case websocket.TextMessage:
			result, err := h.detectionService.Detect(ctx, detection.DetectRequest{Image: string(message)})
			reply = h.frameReply(errHandler, requestID, result, err)
		default:
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}

		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *DetectionHandler) frameReply(errHandler *handlerUtil.ErrorHandler, requestID string, result interface{}, err error) interface{} {
	if err != nil {
		_, body := errHandler.Resolve(err)
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Detection frame failed")
		return body
	}
	return result
}
