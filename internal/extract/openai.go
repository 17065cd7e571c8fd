package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/greenaudit/greenaudit/internal/model"
)

const extractMaxRetries = 3

// extractSleepFunc is the sleep function used between retries (injectable for tests)
var extractSleepFunc = time.Sleep

const extractionPrompt = `You are an expert environmental auditor. Extract every specific environmental claim (e.g. "planted trees", "restored area", "installed solar capacity") from the report text below.

Respond with a JSON object of the form:
{"claims": [{"description": string, "location": {"latitude": number, "longitude": number} | null, "date_claimed": string | null, "measure_value": number | null, "measure_unit": string | null}]}

Rules:
- "description" is the claim in the report's own words.
- "location" only when coordinates or an unambiguous place appear in the text; use null otherwise.
- "measure_value"/"measure_unit" capture the claimed quantity (e.g. 5000 / "trees").
- Do not invent claims that are not in the text.

Report text:
%s`

// OpenAIExtractor extracts claims with an OpenAI-compatible chat endpoint.
type OpenAIExtractor struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIExtractor creates an extractor from LLM configuration.
func NewOpenAIExtractor(cfg model.LLMConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OpenAIExtractor{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     m,
		maxTokens: maxTokens,
		timeout:   timeout,
	}, nil
}

// ExtractClaims asks the LLM for structured claims, retrying transient
// failures with exponential backoff.
func (e *OpenAIExtractor) ExtractClaims(ctx context.Context, text string) ([]model.EnvironmentalClaim, error) {
	var lastErr error
	for attempt := 0; attempt < extractMaxRetries; attempt++ {
		claims, err := e.extractOnce(ctx, text)
		if err == nil {
			return claims, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < extractMaxRetries-1 {
			extractSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return nil, fmt.Errorf("extract claims: %w", lastErr)
}

func (e *OpenAIExtractor) extractOnce(ctx context.Context, text string) ([]model.EnvironmentalClaim, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(extractionPrompt, text),
			},
		},
		MaxTokens:   e.maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return ParseClaims(resp.Choices[0].Message.Content)
}

// claimPayload is the wire shape the extraction prompt requests.
type claimPayload struct {
	Description string `json:"description"`
	Location    *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	DateClaimed  string   `json:"date_claimed"`
	MeasureValue *float64 `json:"measure_value"`
	MeasureUnit  string   `json:"measure_unit"`
}

// ParseClaims decodes the LLM's JSON answer into claims. Claims without a
// description are dropped.
func ParseClaims(raw string) ([]model.EnvironmentalClaim, error) {
	var payload struct {
		Claims []claimPayload `json:"claims"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode claims JSON: %w", err)
	}

	claims := make([]model.EnvironmentalClaim, 0, len(payload.Claims))
	for _, c := range payload.Claims {
		if strings.TrimSpace(c.Description) == "" {
			continue
		}
		claim := model.EnvironmentalClaim{
			Description:  strings.TrimSpace(c.Description),
			DateClaimed:  c.DateClaimed,
			MeasureValue: c.MeasureValue,
			MeasureUnit:  c.MeasureUnit,
		}
		if c.Location != nil {
			claim.Location = &model.GeoCoordinates{
				Latitude:  c.Location.Latitude,
				Longitude: c.Location.Longitude,
			}
		}
		claims = append(claims, claim)
	}
	return claims, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
