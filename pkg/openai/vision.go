package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"DeepfakeDetector/pkg/vision"
	jsoniter "github.com/json-iterator/go"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel   = "google/gemini-2.5-flash"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// visionClient talks to any OpenAI compatible chat-completions endpoint.
type visionClient struct {
	client *openai.Client
	apiKey string
	model  string
}

func New(cfg Config) vision.Detector {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &visionClient{
		client: openai.NewClientWithConfig(clientConfig),
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
	}
}

func (c *visionClient) Name() string { return "openai" }

func (c *visionClient) Model() string { return c.model }

func (c *visionClient) Detect(ctx context.Context, img vision.Image) (string, error) {
	if c.apiKey == "" {
		return "", vision.ErrMissingCredential
	}

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: vision.Prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: img.DataURL(),
							},
						},
					},
				},
			},
		},
	)
	if err != nil {
		return "", c.translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", vision.ErrEmptyContent
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", vision.ErrEmptyContent
	}

	return content, nil
}

func (c *visionClient) translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &vision.StatusError{
			Provider:   c.Name(),
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErrorBody(apiErr),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &vision.StatusError{
			Provider:   c.Name(),
			StatusCode: reqErr.HTTPStatusCode,
			Body:       strings.TrimSpace(string(reqErr.Body)),
		}
	}

	return fmt.Errorf("chat completion request failed: %w", err)
}

// apiErrorBody re-encodes a decoded upstream error in its wire shape so type and code survive.
func apiErrorBody(apiErr *openai.APIError) string {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]*openai.APIError{"error": apiErr})
	if err != nil {
		return apiErr.Message
	}
	return string(body)
}
