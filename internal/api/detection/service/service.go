package detectionService

import (
	"time"

	"DeepfakeDetector/internal/api/detection"
	"DeepfakeDetector/internal/entity"
	"DeepfakeDetector/pkg/redis"
	"DeepfakeDetector/pkg/utils"
	"DeepfakeDetector/pkg/vision"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDetectionService interface {
	Detect(ctx context.Context, req detection.DetectRequest) (*entity.DetectionResult, error)
	DetectImage(ctx context.Context, img vision.Image) (*entity.DetectionResult, error)
}

type Config struct {
	// MaxImageBytes > 0 turns on server side size and type checks.
	MaxImageBytes int64
	CacheTTL      time.Duration
}

type detectionService struct {
	log      *logrus.Logger
	detector vision.Detector
	cache    redis.IRedis
	utils    utils.IUtils
	cfg      Config
}

// NewDetectionService wires one detector. cache may be nil.
func NewDetectionService(
	log *logrus.Logger,
	detector vision.Detector,
	cache redis.IRedis,
	utils utils.IUtils,
	cfg Config,
) IDetectionService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &detectionService{
		log:      log,
		detector: detector,
		cache:    cache,
		utils:    utils,
		cfg:      cfg,
	}
}
