package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/glossworks/glossworks/internal/platform/httpx"
)

// Question is one AI-generated intake question.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

// VehicleInfo identifies the vehicle being assessed.
type VehicleInfo struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  string `json:"year"`
}

// AssessmentAnswer pairs a question with the customer's answer.
type AssessmentAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Client wraps the OpenAI chat API for assessment workflows. A client
// built without an API key is disabled and every call reports an
// upstream provider error, which call sites degrade on.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient constructs a Client. An empty apiKey yields a disabled client.
func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	c := &Client{model: model, logger: logger}
	if apiKey != "" {
		c.api = openai.NewClient(option.WithAPIKey(apiKey))
	}
	return c
}

// Enabled reports whether the client can reach the provider.
func (c *Client) Enabled() bool {
	return c.api != nil
}

// GenerateQuestions asks the model for intake questions tailored to
// the vehicle.
func (c *Client) GenerateQuestions(ctx context.Context, vehicle VehicleInfo) ([]Question, error) {
	prompt := fmt.Sprintf(`Generate 5 specific assessment questions for a %s %s %s that will be detailed. The questions should help determine the condition of the vehicle and the level of detailing required. Format the output as a JSON array of objects, each with 'id', 'question', 'type' (either 'text', 'select', or 'number'), and 'options' (an array of strings, only for 'select' type) properties.`,
		vehicle.Year, vehicle.Make, vehicle.Model)

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	questions, err := ParseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	return questions, nil
}

// GenerateEstimate asks the model for a total detailing cost in USD
// based on the assessment answers.
func (c *Client) GenerateEstimate(ctx context.Context, vehicle VehicleInfo, answers []AssessmentAnswer) (float64, error) {
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return 0, err
	}
	prompt := fmt.Sprintf(`Based on the following assessment data for a %s %s %s, provide an estimated cost for a full detailing service. Consider the vehicle's condition and the level of detailing required.
Assessment data:
%s

Provide the estimate as a single number representing the total cost in USD.`,
		vehicle.Year, vehicle.Make, vehicle.Model, data)

	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return 0, err
	}
	amount, err := ParseEstimate(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	return amount, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("%w: AI provider not configured", httpx.ErrExternalProvider)
	}
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(c.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("chat completion failed", slog.Any("error", err))
		}
		return "", fmt.Errorf("%w: %v", httpx.ErrExternalProvider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", httpx.ErrExternalProvider)
	}
	return resp.Choices[0].Message.Content, nil
}
