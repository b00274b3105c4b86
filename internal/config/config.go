package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	App      AppConfig
	Detector DetectorConfig
	Limit    LimitConfig
	Auth     AuthConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Name      string
	Port      string
	Env       string
	LogLevel  string
	BodyLimit int
}

type DetectorConfig struct {
	Provider      string
	APIKey        string
	BaseURL       string
	GeminiURL     string
	Model         string
	Timeout       time.Duration
	MaxImageBytes int64
}

type LimitConfig struct {
	RPS   float64
	Burst int
}

type AuthConfig struct {
	JWTSecret string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Load reads configuration from the environment. A missing API key is not an
// error here; requests report it when they reach the detector.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "Deepfake Detector")
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("BODY_LIMIT", 10*1024*1024) // 10MB
	v.SetDefault("DETECTOR_PROVIDER", ProviderOpenAI)
	v.SetDefault("DETECTOR_API_KEY", "")
	v.SetDefault("LOVABLE_API_KEY", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("DETECTOR_BASE_URL", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("GEMINI_ENDPOINT", "")
	v.SetDefault("DETECTOR_MODEL", "")
	v.SetDefault("DETECTOR_TIMEOUT", "60s")
	v.SetDefault("DETECT_MAX_IMAGE_BYTES", 0)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "24h")

	v.AutomaticEnv()

	provider := strings.ToLower(strings.TrimSpace(v.GetString("DETECTOR_PROVIDER")))
	if provider != ProviderOpenAI && provider != ProviderGemini {
		return nil, fmt.Errorf("unsupported DETECTOR_PROVIDER %q", provider)
	}

	timeout := v.GetDuration("DETECTOR_TIMEOUT")
	if timeout <= 0 {
		return nil, fmt.Errorf("DETECTOR_TIMEOUT must be positive, got %q", v.GetString("DETECTOR_TIMEOUT"))
	}

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("APP_NAME"),
			Port:      v.GetString("APP_PORT"),
			Env:       v.GetString("APP_ENV"),
			LogLevel:  v.GetString("LOG_LEVEL"),
			BodyLimit: v.GetInt("BODY_LIMIT"),
		},
		Detector: DetectorConfig{
			Provider:      provider,
			APIKey:        apiKey(v, provider),
			BaseURL:       v.GetString("DETECTOR_BASE_URL"),
			GeminiURL:     v.GetString("GEMINI_ENDPOINT"),
			Model:         v.GetString("DETECTOR_MODEL"),
			Timeout:       timeout,
			MaxImageBytes: v.GetInt64("DETECT_MAX_IMAGE_BYTES"),
		},
		Limit: LimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
	}

	return cfg, nil
}

func apiKey(v *viper.Viper, provider string) string {
	keys := []string{"DETECTOR_API_KEY", "LOVABLE_API_KEY"}
	switch provider {
	case ProviderGemini:
		keys = append(keys, "GEMINI_API_KEY")
	default:
		keys = append(keys, "OPENAI_API_KEY")
	}

	for _, key := range keys {
		if value := strings.TrimSpace(v.GetString(key)); value != "" {
			return value
		}
	}
	return ""
}
