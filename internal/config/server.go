package config

import (
	"context"
	"fmt"
	"io"

	detectionHandler "DeepfakeDetector/internal/api/detection/handler"
	detectionService "DeepfakeDetector/internal/api/detection/service"
	"DeepfakeDetector/internal/middleware"
	"DeepfakeDetector/pkg/gemini"
	"DeepfakeDetector/pkg/openai"
	"DeepfakeDetector/pkg/redis"
	"DeepfakeDetector/pkg/utils"
	"DeepfakeDetector/pkg/vision"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	log          *logrus.Logger
	cfg          *Config
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	detector     vision.Detector
	verdictCache redis.IRedis
	handlers     []handler
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if server.detector == nil {
		return nil, fmt.Errorf("detector is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithConfig(cfg *Config) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		if s.cfg == nil {
			return fmt.Errorf("config must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, middleware.Config{
			RateLimit: rate.Limit(s.cfg.Limit.RPS),
			Burst:     s.cfg.Limit.Burst,
			JWTSecret: s.cfg.Auth.JWTSecret,
		})
		return nil
	}
}

// WithDetector builds the provider named by DETECTOR_PROVIDER.
func WithDetector() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be initialized before detector")
		}

		dc := s.cfg.Detector
		switch dc.Provider {
		case ProviderGemini:
			client, err := gemini.NewGeminiClient(context.Background(), gemini.Config{
				APIKey:   dc.APIKey,
				Model:    dc.Model,
				Endpoint: dc.GeminiURL,
				Timeout:  dc.Timeout,
			})
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create Gemini client: %v", err)
				}
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.detector = client
		default:
			s.detector = openai.New(openai.Config{
				APIKey:  dc.APIKey,
				BaseURL: dc.BaseURL,
				Model:   dc.Model,
				Timeout: dc.Timeout,
			})
		}

		if dc.APIKey == "" && s.log != nil {
			s.log.Warnf("No API key configured for %s detector, requests will fail until one is set", s.detector.Name())
		}
		return nil
	}
}

// WithCustomDetector replaces the configured provider.
func WithCustomDetector(detector vision.Detector) ServerOption {
	return func(s *Server) error {
		s.detector = detector
		return nil
	}
}

// WithVerdictCache connects to Redis only when REDIS_ADDRESS is set.
func WithVerdictCache() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.Redis.Address == "" {
			return nil
		}
		client, err := redis.New(redis.Config{
			Address:  s.cfg.Redis.Address,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
		}, s.log)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		s.verdictCache = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) RegisterHandler() {
	s.engine.Use(recover.New())
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	s.engine.Use(s.middleware.NewCORSMiddleware())

	// Detection
	detectionServices := detectionService.NewDetectionService(s.log, s.detector, s.verdictCache, s.utils, detectionService.Config{
		MaxImageBytes: s.cfg.Detector.MaxImageBytes,
		CacheTTL:      s.cfg.Redis.CacheTTL,
	})
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.utils, int64(s.engine.Config().BodyLimit))

	s.setupHealthCheck()
	s.handlers = append(s.handlers, detectionHandlers)

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	port := s.cfg.App.Port
	if port == "" {
		port = "3000"
	}

	s.log.Infof("Listening on :%s with %s detector (%s)", port, s.detector.Name(), s.detector.Model())
	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	if closer, ok := s.detector.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			s.log.Warnf("Failed to close detector: %v", cerr)
		}
	}
	if s.verdictCache != nil {
		if cerr := s.verdictCache.Close(); cerr != nil {
			s.log.Warnf("Failed to close redis: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":  "Server is Healthy!",
			"provider": s.detector.Name(),
			"model":    s.detector.Model(),
		})
	})
}
