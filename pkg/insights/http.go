package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPConfig contains configuration for the HTTP metrics provider.
type HTTPConfig struct {
	// BaseURL is the root of the metrics API, e.g. "https://ads.example.com/v1".
	BaseURL string

	// APIToken is sent as a bearer token when non-empty.
	APIToken string

	// Timeout bounds each fetch request. Default: 30s.
	Timeout time.Duration

	// MaxRetries is the number of retries for transient upstream errors.
	// Default: 2.
	MaxRetries int

	// RetryBackoff is the base delay before the first retry; it doubles
	// per attempt. Default: 1s.
	RetryBackoff time.Duration
}

// DefaultHTTPConfig returns the default HTTP provider configuration.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Second,
	}
}

// HTTPProvider fetches campaign snapshots from a metrics API over HTTP.
// Delivery platforms report most counters as JSON strings; the provider
// parses them into numeric snapshot fields at the boundary.
type HTTPProvider struct {
	config HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPProvider creates a new HTTP metrics provider.
func NewHTTPProvider(config HTTPConfig, logger *slog.Logger) (*HTTPProvider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("metrics provider base URL cannot be empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: logger.With("component", "insights.http"),
	}, nil
}

// FetchSnapshot retrieves the campaign's snapshot for the current reporting
// window. Transient upstream failures (5xx, network errors) are retried with
// exponential backoff up to MaxRetries times.
func (p *HTTPProvider) FetchSnapshot(ctx context.Context, campaignID string) (*Snapshot, error) {
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id cannot be empty")
	}

	url := fmt.Sprintf("%s/campaigns/%s/insights", strings.TrimRight(p.config.BaseURL, "/"), campaignID)

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.config.RetryBackoff * time.Duration(1<<(attempt-1))
			p.logger.Debug("retrying snapshot fetch",
				"campaign_id", campaignID,
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		snap, retryable, err := p.fetchOnce(ctx, url, campaignID)
		if err == nil {
			return snap, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		p.logger.Warn("snapshot fetch failed, will retry",
			"campaign_id", campaignID,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

// fetchOnce performs a single fetch attempt. The second return value reports
// whether the failure is transient and worth retrying.
func (p *HTTPProvider) fetchOnce(ctx context.Context, url, campaignID string) (*Snapshot, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("campaign %s: %w", campaignID, ErrCampaignNotFound)

	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, true, &UpstreamError{
			CampaignID: campaignID,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, false, &UpstreamError{
			CampaignID: campaignID,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var payload insightsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode snapshot response: %w", err)
	}

	// An empty data list means the window has no delivery yet.
	if len(payload.Data) == 0 {
		p.logger.Debug("no snapshot data for window", "campaign_id", campaignID)
		return nil, false, nil
	}

	return payload.Data[0].toSnapshot(campaignID), false, nil
}

// insightsResponse is the wire shape of the metrics API response.
type insightsResponse struct {
	Data []insightsRow `json:"data"`
}

// insightsRow is one reporting row. Counters arrive as strings or numbers
// depending on the platform, so every numeric field uses flexFloat.
type insightsRow struct {
	CampaignID  string      `json:"campaign_id"`
	Spend       flexFloat   `json:"spend"`
	Clicks      flexFloat   `json:"clicks"`
	Impressions flexFloat   `json:"impressions"`
	CTR         flexFloat   `json:"ctr"`
	CPC         flexFloat   `json:"cpc"`
	CPM         flexFloat   `json:"cpm"`
	Reach       flexFloat   `json:"reach"`
	Frequency   flexFloat   `json:"frequency"`
	Actions     []actionRow `json:"actions"`
}

type actionRow struct {
	ActionType string    `json:"action_type"`
	Value      flexFloat `json:"value"`
}

// toSnapshot converts a wire row into a Snapshot.
func (r *insightsRow) toSnapshot(campaignID string) *Snapshot {
	if r.CampaignID != "" {
		campaignID = r.CampaignID
	}

	snap := &Snapshot{
		CampaignID:  campaignID,
		Spend:       float64(r.Spend),
		Clicks:      float64(r.Clicks),
		Impressions: float64(r.Impressions),
		CTR:         float64(r.CTR),
		CPC:         float64(r.CPC),
		CPM:         float64(r.CPM),
		Reach:       float64(r.Reach),
		Frequency:   float64(r.Frequency),
		FetchedAt:   time.Now(),
	}

	for _, a := range r.Actions {
		snap.Actions = append(snap.Actions, ActionStat{
			Kind:  a.ActionType,
			Count: float64(a.Value),
		})
	}

	return snap
}

// flexFloat decodes a JSON number that may be quoted as a string.
type flexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cannot parse %q as number: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
