package detectionHandler

import (
	detectionService "DeepfakeDetector/internal/api/detection/service"
	"DeepfakeDetector/internal/middleware"
	"DeepfakeDetector/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
	// frameLimit caps one websocket frame; <= 0 leaves it unbounded.
	frameLimit int64
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
	frameLimit int64,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
		frameLimit:       frameLimit,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	deepfake := srv.Group("/deepfake", h.middleware.NewTokenMiddleware, h.middleware.NewRateLimiter)
	deepfake.Post("/detect", h.Detect)

	deepfake.Use("/ws", wsMiddleware)
	deepfake.Get("/ws", websocket.New(h.handleDetectWebSocket))
}
