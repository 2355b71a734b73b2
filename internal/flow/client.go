package flow

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

// APISteps implements Steps against the HTTP API, so a headless consumer
// (demo driver, smoke check) can walk the same journey the browser does.
type APISteps struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPISteps(baseURL string) *APISteps {
	return &APISteps{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 180 * time.Second},
	}
}

func (s *APISteps) ConfirmAuth(ctx context.Context, sessionID, providerUserID string) error {
	payload := map[string]string{
		"sessionId":          sessionID,
		"terraUserIdFromUrl": providerUserID,
	}
	return s.postJSON(ctx, "/api/terra/confirm-auth", payload, nil)
}

func (s *APISteps) FetchReport(ctx context.Context, sessionID string) (*internal.HealthDataReport, error) {
	var report internal.HealthDataReport
	if err := s.getJSON(ctx, "/api/terra/data-report/"+sessionID, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *APISteps) GenerateArchetype(ctx context.Context, sessionID string) (*internal.ArchetypeResult, error) {
	var result internal.ArchetypeResult
	payload := map[string]string{"sessionId": sessionID}
	if err := s.postJSON(ctx, "/api/archetype/generate", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *APISteps) GenerateImage(ctx context.Context, imagePrompt string) (string, error) {
	var resp struct {
		ImageURL string `json:"imageUrl"`
	}
	payload := map[string]string{"imagePrompt": imagePrompt}
	if err := s.postJSON(ctx, "/api/archetype/generate-image", payload, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

func (s *APISteps) ClearSession(ctx context.Context, sessionID string) error {
	return s.postJSON(ctx, "/api/terra/clear", map[string]string{"sessionId": sessionID}, nil)
}

var _ Steps = (*APISteps)(nil)

func (s *APISteps) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *APISteps) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *APISteps) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperr.Provider("flow request failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Provider("failed to read flow response", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errBody) == nil && errBody.Error != "" {
			return fmt.Errorf("%s returned status %d: %s", req.URL.Path, resp.StatusCode, errBody.Error)
		}
		return fmt.Errorf("%s returned status %d", req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
