// Package terra talks to the wearable data aggregator: widget-session
// initiation for device auth, and time-windowed retrieval of the four
// summary categories (daily, sleep, activity, body).
package terra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlm20/terra-health-archetypes/internal"
	"github.com/mlm20/terra-health-archetypes/internal/apperr"
)

const dateFormat = "2006-01-02"

type Client struct {
	devID       string
	apiKey      string
	baseURL     string
	frontendURL string
	httpClient  *http.Client
	logger      internal.Logger
}

func NewClient(devID, apiKey, baseURL, frontendURL string, logger internal.Logger) *Client {
	return &Client{
		devID:       devID,
		apiKey:      apiKey,
		baseURL:     baseURL,
		frontendURL: frontendURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
	}
}

func (c *Client) credentialed() bool {
	return c.devID != "" && c.apiKey != ""
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("dev-id", c.devID)
	req.Header.Set("x-api-key", c.apiKey)
}

// FetchAll retrieves the four category collections for the window
// concurrently and waits for all of them. Individual category failures are
// absorbed as empty collections; only a missing credential is an error, and
// it is raised before any request goes out.
func (c *Client) FetchAll(ctx context.Context, userID string, startDate, endDate time.Time) (internal.HealthData, error) {
	if !c.credentialed() {
		return internal.HealthData{}, apperr.Configuration("terra API credentials are not configured")
	}

	start := startDate.Format(dateFormat)
	end := endDate.Format(dateFormat)

	var data internal.HealthData
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(category string, dst *[]internal.Record) func() error {
		return func() error {
			*dst = c.fetchCategory(gctx, category, userID, start, end)
			return nil
		}
	}
	g.Go(fetch("daily", &data.Daily))
	g.Go(fetch("sleep", &data.Sleep))
	g.Go(fetch("activity", &data.Activity))
	g.Go(fetch("body", &data.Body))
	_ = g.Wait() // category fetches never return errors

	return data, nil
}

// fetchCategory issues one windowed request. It never fails the caller: any
// transport error, non-success status, or unrecognized response shape is
// logged and yields an empty collection, so one bad sub-resource cannot
// abort the other three.
func (c *Client) fetchCategory(ctx context.Context, category, userID, startDate, endDate string) []internal.Record {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	q.Set("to_webhook", "false")
	q.Set("with_samples", "false")
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, category, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Errorf("terra: failed to build %s request: %v", category, err)
		return []internal.Record{}
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("terra: %s request failed: %v", category, err)
		return []internal.Record{}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Errorf("terra: failed to read %s response: %v", category, err)
		return []internal.Record{}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Errorf("terra: %s returned status %d: %s", category, resp.StatusCode, body)
		return []internal.Record{}
	}

	records, ok := normalizeEnvelope(body)
	if !ok {
		c.logger.Warnf("terra: unexpected %s response shape, could not find data array: %s", category, body)
		return []internal.Record{}
	}
	return records
}

// normalizeEnvelope unwraps the two envelope shapes the aggregator is known
// to return: {"data": [...]} and {"data": {"data": [...]}}. Anything else
// reports !ok.
func normalizeEnvelope(body []byte) ([]internal.Record, bool) {
	var outer struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &outer); err != nil || len(outer.Data) == 0 {
		return nil, false
	}

	var direct []internal.Record
	if err := json.Unmarshal(outer.Data, &direct); err == nil {
		return direct, true
	}

	var nested struct {
		Data []internal.Record `json:"data"`
	}
	if err := json.Unmarshal(outer.Data, &nested); err == nil && nested.Data != nil {
		return nested.Data, true
	}
	return nil, false
}
