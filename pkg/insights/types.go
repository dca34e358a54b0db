package insights

import "time"

// Snapshot is an immutable point-in-time read of a campaign's raw delivery
// metrics for one reporting window. A nil *Snapshot means the source had no
// data for the window; consumers must treat raw fields as zero in that case.
type Snapshot struct {
	// CampaignID identifies the campaign this snapshot belongs to.
	CampaignID string `json:"campaign_id" yaml:"campaignId"`

	// Spend is the amount spent in the account currency.
	Spend float64 `json:"spend" yaml:"spend"`

	// Clicks is the number of clicks delivered.
	Clicks float64 `json:"clicks" yaml:"clicks"`

	// Impressions is the number of times ads were shown.
	Impressions float64 `json:"impressions" yaml:"impressions"`

	// CTR is the click-through rate as a percentage.
	CTR float64 `json:"ctr" yaml:"ctr"`

	// CPC is the average cost per click.
	CPC float64 `json:"cpc" yaml:"cpc"`

	// CPM is the average cost per thousand impressions.
	CPM float64 `json:"cpm" yaml:"cpm"`

	// Reach is the number of unique accounts reached.
	Reach float64 `json:"reach" yaml:"reach"`

	// Frequency is the average number of times each account saw an ad.
	Frequency float64 `json:"frequency" yaml:"frequency"`

	// Actions holds categorized conversion-like event counts as reported
	// by the delivery platform.
	Actions []ActionStat `json:"actions,omitempty" yaml:"actions,omitempty"`

	// FetchedAt records when the snapshot was retrieved.
	FetchedAt time.Time `json:"fetched_at,omitempty" yaml:"fetchedAt,omitempty"`
}

// ActionStat is one categorized event counter from the delivery platform,
// e.g. ("initiate_checkout", 12).
type ActionStat struct {
	// Kind is the platform's action type identifier.
	Kind string `json:"action_type" yaml:"kind"`

	// Count is the number of events of this kind in the window.
	Count float64 `json:"value" yaml:"count"`
}
