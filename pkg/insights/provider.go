package insights

import (
	"context"
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrCampaignNotFound indicates the metrics source does not know the campaign.
	ErrCampaignNotFound = errors.New("campaign not found")
)

// Provider supplies campaign metric snapshots from a delivery platform.
type Provider interface {
	// FetchSnapshot returns the campaign's snapshot for the current
	// reporting window. A (nil, nil) return means the source responded
	// but has no data for the window; callers treat raw metrics as zero.
	FetchSnapshot(ctx context.Context, campaignID string) (*Snapshot, error)
}

// UpstreamError indicates the metrics source responded with a failure status.
type UpstreamError struct {
	CampaignID string
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("metrics source returned status %d for campaign %s: %s", e.StatusCode, e.CampaignID, e.Message)
}
