package insights

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// StaticProvider serves snapshots from an in-memory map. It backs demo mode
// and tests, where no delivery platform is reachable.
type StaticProvider struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewStaticProvider creates an empty static provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		snapshots: make(map[string]*Snapshot),
	}
}

// NewStaticProviderFromFile creates a static provider preloaded from a YAML
// fixture file of the form:
//
//	snapshots:
//	  - campaignId: camp-001
//	    spend: 150
//	    clicks: 320
//	    actions:
//	      - kind: initiate_checkout
//	        count: 12
func NewStaticProviderFromFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot fixtures: %w", err)
	}

	var file struct {
		Snapshots []Snapshot `yaml:"snapshots"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot fixtures %q: %w", path, err)
	}

	p := NewStaticProvider()
	for i := range file.Snapshots {
		snap := file.Snapshots[i]
		if snap.CampaignID == "" {
			return nil, fmt.Errorf("snapshot fixture %d in %q has no campaignId", i, path)
		}
		p.Set(snap.CampaignID, &snap)
	}

	return p, nil
}

// Set stores a snapshot for a campaign. A nil snapshot marks the campaign as
// known but without data for the window.
func (p *StaticProvider) Set(campaignID string, snap *Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap == nil {
		p.snapshots[campaignID] = nil
		return
	}

	snapCopy := *snap
	snapCopy.CampaignID = campaignID
	p.snapshots[campaignID] = &snapCopy
}

// FetchSnapshot returns the stored snapshot for the campaign.
func (p *StaticProvider) FetchSnapshot(ctx context.Context, campaignID string) (*Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	snap, ok := p.snapshots[campaignID]
	if !ok {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrCampaignNotFound)
	}
	if snap == nil {
		return nil, nil
	}

	snapCopy := *snap
	return &snapCopy, nil
}

// Len returns the number of known campaigns (for testing).
func (p *StaticProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.snapshots)
}
