package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// retryableStatus reports whether an HTTP status from a provider justifies
// another attempt: rate limits and server-side failures do, everything else
// (auth, bad request, content policy) does not.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// GeminiProvider completes prompts against the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed provider.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", normalizeGeminiErr(err)
	}
	text := resp.Text()
	if text == "" {
		return "", &ProviderError{Status: http.StatusOK, Transient: true, Err: errors.New("empty completion")}
	}
	return text, nil
}

func normalizeGeminiErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Status: apiErr.Code, Transient: retryableStatus(apiErr.Code), Err: err}
	}
	return normalizeNetErr(err)
}

// OpenAIProvider completes prompts against the OpenAI chat API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI-backed provider.
func NewOpenAI(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey), model: model}
}

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", normalizeOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Status: http.StatusOK, Transient: true, Err: errors.New("no choices in completion")}
	}
	return resp.Choices[0].Message.Content, nil
}

func normalizeOpenAIErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Status:    apiErr.HTTPStatusCode,
			Transient: retryableStatus(apiErr.HTTPStatusCode),
			Err:       err,
		}
	}
	return normalizeNetErr(err)
}

// normalizeNetErr classifies transport-level failures: timeouts and context
// deadlines are transient, cancellation is not.
func normalizeNetErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return &ProviderError{Transient: false, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ProviderError{Transient: true, Err: err}
	}
	return &ProviderError{Transient: true, Err: err}
}
