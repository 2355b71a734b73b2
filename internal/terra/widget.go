package terra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mlm20/terra-health-archetypes/internal/apperr"
)

type widgetSessionRequest struct {
	ReferenceID            string `json:"reference_id"`
	Language               string `json:"language"`
	AuthSuccessRedirectURL string `json:"auth_success_redirect_url"`
	AuthFailureRedirectURL string `json:"auth_failure_redirect_url"`
}

type widgetSessionResponse struct {
	Status  string `json:"status"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// InitiateWidgetSession asks the aggregator for a hosted device-connection
// widget URL. The session id rides along as the reference id so the auth
// callback can be tied back to the session that started it.
func (c *Client) InitiateWidgetSession(ctx context.Context, sessionID string) (string, error) {
	if !c.credentialed() {
		return "", apperr.Configuration("terra API credentials are not configured")
	}

	payload := widgetSessionRequest{
		ReferenceID:            sessionID,
		Language:               "en",
		AuthSuccessRedirectURL: fmt.Sprintf("%s/flow?sessionId=%s", c.frontendURL, sessionID),
		AuthFailureRedirectURL: fmt.Sprintf("%s/?error=auth_failed", c.frontendURL),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Provider("failed to encode widget session request", 0, err)
	}

	endpoint := c.baseURL + "/auth/generateWidgetSession"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Provider("failed to build widget session request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Provider("widget session request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Provider("failed to read widget session response", resp.StatusCode, err)
	}

	var parsed widgetSessionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperr.Provider(fmt.Sprintf("unexpected widget session response: %s", respBody), resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "success" || parsed.URL == "" {
		msg := parsed.Message
		if msg == "" {
			msg = string(respBody)
		}
		return "", apperr.Provider(fmt.Sprintf("widget session initiation failed: %s", msg), resp.StatusCode, nil)
	}

	c.logger.Infof("terra: widget session created for session %s", sessionID)
	return parsed.URL, nil
}
