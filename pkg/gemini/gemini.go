package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"DeepfakeDetector/pkg/vision"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string
	// Endpoint overrides the Generative Language API host.
	Endpoint string
	Timeout  time.Duration
}

type geminiClient struct {
	modelName string
	timeout   time.Duration
	client    *genai.Client
}

// NewGeminiClient returns a detector even without a key; Detect then reports
// vision.ErrMissingCredential instead of failing startup.
func NewGeminiClient(ctx context.Context, cfg Config) (vision.Detector, error) {
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	g := &geminiClient{modelName: modelName, timeout: timeout}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return g, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	g.client = client

	return g, nil
}

func (g *geminiClient) Name() string { return "gemini" }

func (g *geminiClient) Model() string { return g.modelName }

func (g *geminiClient) Detect(ctx context.Context, img vision.Image) (string, error) {
	if g.client == nil {
		return "", vision.ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.modelName)

	res, err := model.GenerateContent(ctx, genai.Text(vision.Prompt), genai.Blob{
		MIMEType: img.MIMEType,
		Data:     img.Data,
	})
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code != 0 {
			body := apiErr.Body
			if body == "" {
				body = apiErr.Message
			}
			return "", &vision.StatusError{
				Provider:   g.Name(),
				StatusCode: apiErr.Code,
				Body:       strings.TrimSpace(body),
			}
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", vision.ErrEmptyContent
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", vision.ErrEmptyContent
	}

	return content, nil
}

func (g *geminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
