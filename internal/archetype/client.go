// Package archetype generates the symbolic persona for a health report: a
// chat completion for the text, name, sliders, and image prompt, and an
// image generation for the avatar itself.
package archetype

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mlm20/terra-health-archetypes/internal"
	"github.com/mlm20/terra-health-archetypes/internal/apperr"
)

const (
	chatModel  = "gpt-4.1-mini"
	imageModel = "dall-e-3"

	// One retry after the initial attempt, with a fixed pause between them.
	maxRetries        = 1
	defaultRetryDelay = 1000 * time.Millisecond
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     internal.Logger
	retryDelay time.Duration
}

func NewClient(apiKey, baseURL string, logger internal.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type llmArchetype struct {
	ArchetypeName        string         `json:"archetypeName"`
	ArchetypeDescription string         `json:"archetypeDescription"`
	ImagePrompt          string         `json:"imagePrompt"`
	SliderValues         map[string]int `json:"sliderValues"`
}

// GenerateArchetype asks the chat model for the archetype JSON and validates
// it against the expected shape. A response that parses but is missing a
// field or slider key is a contract violation and is never retried.
func (c *Client) GenerateArchetype(ctx context.Context, report internal.HealthDataReport) (*internal.ArchetypeResult, error) {
	if c.apiKey == "" {
		return nil, apperr.Configuration("OpenAI API key is not configured")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, apperr.Contract("failed to serialize health report", "")
	}

	reqBody := chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(report.TimePeriodDays, string(reportJSON))},
		},
		Temperature: 0.7,
	}
	reqBody.ResponseFormat.Type = "json_object"

	respBody, err := c.postJSON(ctx, "/chat/completions", reqBody)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperr.Contract("could not decode chat completion response", string(respBody))
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, apperr.Contract("chat completion returned no content", string(respBody))
	}

	content := parsed.Choices[0].Message.Content
	var archetype llmArchetype
	if err := json.Unmarshal([]byte(content), &archetype); err != nil {
		return nil, apperr.Contract("model output is not valid JSON", content)
	}
	if err := validateArchetype(archetype); err != nil {
		return nil, err
	}

	return &internal.ArchetypeResult{
		ArchetypeName:        archetype.ArchetypeName,
		ArchetypeDescription: archetype.ArchetypeDescription,
		ImagePrompt:          archetype.ImagePrompt,
		SliderValues:         archetype.SliderValues,
	}, nil
}

func validateArchetype(a llmArchetype) error {
	raw, _ := json.Marshal(a)
	if a.ArchetypeName == "" {
		return apperr.Contract("model output is missing archetypeName", string(raw))
	}
	if a.ArchetypeDescription == "" {
		return apperr.Contract("model output is missing archetypeDescription", string(raw))
	}
	if a.ImagePrompt == "" {
		return apperr.Contract("model output is missing imagePrompt", string(raw))
	}
	if a.SliderValues == nil {
		return apperr.Contract("model output is missing sliderValues", string(raw))
	}
	for _, key := range internal.SliderKeys {
		if _, ok := a.SliderValues[key]; !ok {
			return apperr.Contract(fmt.Sprintf("model output is missing slider value %q", key), string(raw))
		}
	}
	return nil
}

// postJSON sends one generation request with the shared retry policy: at
// most one retry, only for provider errors that look transient (429, 5xx,
// or a transport failure before any status arrived).
func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Provider("failed to encode generation request", 0, err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warnf("openai: retrying %s after transient failure: %v", path, lastErr)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, apperr.Provider("generation request canceled", 0, ctx.Err())
			}
		}

		respBody, err := c.doOnce(ctx, path, body)
		if err == nil {
			return respBody, nil
		}
		lastErr = err
		if !apperr.Retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Provider("failed to build generation request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Provider("generation request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Provider("failed to read generation response", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Provider(fmt.Sprintf("generation returned status %d: %s", resp.StatusCode, respBody), resp.StatusCode, nil)
	}
	return respBody, nil
}
