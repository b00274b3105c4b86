package detectionService

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"DeepfakeDetector/internal/api/detection"
	"DeepfakeDetector/internal/entity"
	"DeepfakeDetector/pkg/log"
	"DeepfakeDetector/pkg/redis"
	"DeepfakeDetector/pkg/response"
	"DeepfakeDetector/pkg/vision"
	"golang.org/x/net/context"
)

func (s *detectionService) Detect(ctx context.Context, req detection.DetectRequest) (*entity.DetectionResult, error) {
	if strings.TrimSpace(req.Image) == "" {
		return nil, detection.ErrNoImage
	}

	img, err := s.utils.DecodeImagePayload(req.Image)
	if err != nil {
		return nil, response.WithDetails(detection.ErrInvalidImage, err.Error())
	}

	return s.DetectImage(ctx, img)
}

func (s *detectionService) DetectImage(ctx context.Context, img vision.Image) (*entity.DetectionResult, error) {
	logger := log.WithRequestID(s.log, ctx)

	if len(img.Data) == 0 {
		return nil, detection.ErrNoImage
	}

	if s.cfg.MaxImageBytes > 0 {
		if err := s.utils.ValidateImage(img, s.cfg.MaxImageBytes); err != nil {
			return nil, response.WithDetails(detection.ErrInvalidImage, err.Error())
		}
	}

	key := s.cacheKey(img)
	if cached, ok := s.lookup(ctx, key); ok {
		logger.WithField("score", cached.Score).Debug("Serving cached detection result")
		return cached, nil
	}

	logger.WithFields(log.Fields{
		"provider":   s.detector.Name(),
		"model":      s.detector.Model(),
		"mime_type":  img.MIMEType,
		"image_size": len(img.Data),
	}).Info("Processing deepfake detection request")

	content, err := s.detector.Detect(ctx, img)
	if err != nil {
		return nil, s.classify(err)
	}

	verdict, parsed := ParseVerdict(content)
	if !parsed {
		logger.WithField("content", truncate(content, 512)).Warn("Failed to parse AI response as JSON, returning degraded result")
	}

	result := Normalize(verdict)

	logger.WithFields(log.Fields{
		"score":       result.Score,
		"is_deepfake": result.IsDeepfake,
		"confidence":  result.Confidence,
		"degraded":    !parsed,
	}).Info("Detection result")

	if parsed {
		s.store(ctx, key, result)
	}

	return &result, nil
}

func (s *detectionService) classify(err error) error {
	if errors.Is(err, vision.ErrMissingCredential) {
		return response.WithDetails(detection.ErrMisconfiguration, err.Error())
	}

	var statusErr *vision.StatusError
	if errors.As(err, &statusErr) {
		return &detection.UpstreamError{
			Provider:   statusErr.Provider,
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.Body,
		}
	}

	msg := err.Error()
	if msg == "" {
		msg = "upstream request failed"
	}
	return response.WithDetails(detection.ErrInternalServerError, msg)
}

func (s *detectionService) cacheKey(img vision.Image) string {
	sum := sha256.Sum256(img.Data)
	return "deepfake:" + s.detector.Name() + ":" + s.detector.Model() + ":" + hex.EncodeToString(sum[:])
}

func (s *detectionService) lookup(ctx context.Context, key string) (*entity.DetectionResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.WithRequestID(s.log, ctx).WithError(err).Warn("Verdict cache lookup failed")
		}
		return nil, false
	}

	var result entity.DetectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false
	}
	return &result, true
}

func (s *detectionService) store(ctx context.Context, key string, result entity.DetectionResult) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL); err != nil {
		log.WithRequestID(s.log, ctx).WithError(err).Warn("Verdict cache store failed")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
