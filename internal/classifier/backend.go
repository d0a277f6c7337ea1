package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Backend is the opaque generative service: free-text prompt in, free
// text out. Callers must tolerate the returned text not containing a
// valid embedded payload.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIBackend drives any OpenAI-compatible chat completions API.
type OpenAIBackend struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIBackend(apiKey, model string, maxTokens int, temperature float64) *OpenAIBackend {
	return &OpenAIBackend{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: b.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   b.maxTokens,
			Temperature: float32(b.temperature),
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("classifier: empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GeminiBackend calls the Gemini generateContent REST API directly.
type GeminiBackend struct {
	client      *resty.Client
	model       string
	temperature float64
	maxTokens   int
}

type GeminiOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func NewGeminiBackend(opt GeminiOptions) (*GeminiBackend, error) {
	if strings.TrimSpace(opt.APIKey) == "" {
		return nil, errors.New("classifier: API key is required")
	}
	if strings.TrimSpace(opt.BaseURL) == "" {
		opt.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if strings.TrimSpace(opt.Model) == "" {
		opt.Model = "gemini-2.0-flash"
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	return &GeminiBackend{
		client: resty.New().
			SetBaseURL(strings.TrimRight(opt.BaseURL, "/")).
			SetTimeout(opt.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("x-goog-api-key", opt.APIKey),
		model:       opt.Model,
		temperature: opt.Temperature,
		maxTokens:   opt.MaxTokens,
	}, nil
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	var parsed geminiResponse
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(geminiRequest{
			Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
			GenerationConfig: geminiGenConfig{
				Temperature:     b.temperature,
				MaxOutputTokens: b.maxTokens,
			},
		}).
		SetResult(&parsed).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", b.model))
	if err != nil {
		return "", err
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		return "", fmt.Errorf("classifier: gemini status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("classifier: gemini response has no candidates")
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
