package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// RequestTimeout caps each insight generation call, repair included.
	// On expiry the request aborts and the caller falls back to rules.
	RequestTimeout = 8 * time.Second

	systemInstruction = `You are an analyst for a review-management tool. You receive computed ` +
		`review metrics for a business and write insights about them. Rules: do not invent numbers ` +
		`that are not in the input; reply with a JSON array only, no prose, no code fences; the array ` +
		`must contain between 4 and 7 objects; each object has exactly the fields "title" (string), ` +
		`"detail" (string), "severity" (one of "good", "warn", "bad") and "metric_keys" (array drawn ` +
		`from "review_count", "avg_rating", "neg_share", "reply_rate", "timeseries").`
)

// ErrNoChoices is returned when the API response carries no choices.
var ErrNoChoices = errors.New("no choices in response")

// OpenAIProvider implements InsightProvider against the OpenAI chat API.
type OpenAIProvider struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIProvider creates a provider. Empty model and baseURL fall back to
// the defaults.
func NewOpenAIProvider(apiKey, baseURL, model string, logger *zap.Logger) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: RequestTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client: client,
		model:  model,
		logger: logger,
	}
}

// GenerateInsights runs the two-step protocol: one request, shape
// validation, and at most one corrective follow-up quoting the invalid
// output. Any remaining failure is returned as an error for the caller's
// rule-based fallback; nothing is retried beyond the single repair.
func (p *OpenAIProvider) GenerateInsights(ctx context.Context, promptCtx PromptContext) ([]models.Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	prompt, err := buildInsightPrompt(promptCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to build insight prompt: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemInstruction),
		openai.UserMessage(prompt),
	}

	content, err := p.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("insight request failed: %w", err)
	}

	result := ParseInsights(content)
	if !result.Invalid {
		return result.Insights, nil
	}

	p.logger.Debug("insight_response_invalid_requesting_repair",
		zap.String("reason", result.Reason),
		zap.Int("response_length", len(content)),
	)

	messages = append(messages,
		openai.AssistantMessage(content),
		openai.UserMessage(fmt.Sprintf(
			"Your previous reply was invalid: %s. Send the corrected JSON array only, nothing else.",
			result.Reason,
		)),
	)

	content, err = p.complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("insight repair request failed: %w", err)
	}

	result = ParseInsights(content)
	if result.Invalid {
		return nil, fmt.Errorf("insight response invalid after repair: %s", result.Reason)
	}

	return result.Insights, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	content := resp.Choices[0].Message.Content
	p.logger.Debug("insight_llm_response",
		zap.String("model", p.model),
		zap.Int("response_length", len(content)),
		zap.Int64("latency_ms", latency.Milliseconds()),
	)

	return content, nil
}

// buildInsightPrompt serializes the computed metrics into the user message.
// The model only ever sees numbers the engine already computed.
func buildInsightPrompt(promptCtx PromptContext) (string, error) {
	payload := map[string]any{
		"comparison": promptCtx.Compare,
		"quality":    promptCtx.Quality,
	}
	// The tail of the series is enough for trend commentary and keeps the
	// prompt bounded for long ranges.
	series := promptCtx.Series
	if len(series) > 12 {
		series = series[len(series)-12:]
	}
	payload["recent_series"] = series

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return "Computed review metrics for the current and previous period:\n" +
		string(encoded) +
		"\nWrite 4 to 7 insights about these metrics as the JSON array described.", nil
}
