package archetype

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mlm20/terra-health-archetypes/internal/apperr"
)

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	Style          string `json:"style"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateImage renders the avatar for an image prompt and returns it as a
// base64 data URL, so the caller never has to host or proxy the image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", apperr.Configuration("OpenAI API key is not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Validation("image prompt must not be empty")
	}

	reqBody := imageRequest{
		Model:          imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "hd",
		Style:          "vivid",
		ResponseFormat: "b64_json",
	}

	respBody, err := c.postJSON(ctx, "/images/generations", reqBody)
	if err != nil {
		return "", err
	}

	var parsed imageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperr.Contract("could not decode image generation response", string(respBody))
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return "", apperr.Contract("image generation returned no image data", string(respBody))
	}

	return "data:image/png;base64," + parsed.Data[0].B64JSON, nil
}
