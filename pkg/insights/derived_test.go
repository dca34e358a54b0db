package insights

import (
	"math"
	"testing"
)

// TestComputeDerived_ROAS tests ROAS computation including the undefined case.
func TestComputeDerived_ROAS(t *testing.T) {
	tests := []struct {
		name     string
		snap     *Snapshot
		wantNil  bool
		wantROAS float64
	}{
		{
			name: "normal spend and conversions",
			snap: &Snapshot{
				Spend:  150,
				Clicks: 320,
				Actions: []ActionStat{
					{Kind: "initiate_checkout", Count: 12},
				},
			},
			wantROAS: 4.0, // 12 * 50 / 150
		},
		{
			name:    "zero spend is undefined",
			snap:    &Snapshot{Spend: 0, Clicks: 10},
			wantNil: true,
		},
		{
			name:    "negative spend is undefined",
			snap:    &Snapshot{Spend: -5},
			wantNil: true,
		},
		{
			name:    "nil snapshot is undefined",
			snap:    nil,
			wantNil: true,
		},
		{
			name:     "spend with no conversions is zero",
			snap:     &Snapshot{Spend: 90, Clicks: 100},
			wantROAS: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDerived(tt.snap)

			if tt.wantNil {
				if d.ROAS != nil {
					t.Errorf("ROAS = %v, want nil", *d.ROAS)
				}
				return
			}

			if d.ROAS == nil {
				t.Fatal("ROAS = nil, want value")
			}
			if math.Abs(*d.ROAS-tt.wantROAS) > 1e-9 {
				t.Errorf("ROAS = %v, want %v", *d.ROAS, tt.wantROAS)
			}
		})
	}
}

// TestComputeDerived_CostPerAction tests cost per action including the
// undefined case.
func TestComputeDerived_CostPerAction(t *testing.T) {
	tests := []struct {
		name    string
		snap    *Snapshot
		wantNil bool
		wantCPA float64
	}{
		{
			name: "normal conversions",
			snap: &Snapshot{
				Spend: 120,
				Actions: []ActionStat{
					{Kind: "initiate_checkout", Count: 8},
				},
			},
			wantCPA: 15.0,
		},
		{
			name:    "zero conversions is undefined",
			snap:    &Snapshot{Spend: 120},
			wantNil: true,
		},
		{
			name: "unrecognized action kinds only is undefined",
			snap: &Snapshot{
				Spend: 120,
				Actions: []ActionStat{
					{Kind: "link_click", Count: 40},
					{Kind: "page_engagement", Count: 90},
				},
			},
			wantNil: true,
		},
		{
			name:    "nil snapshot is undefined",
			snap:    nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDerived(tt.snap)

			if tt.wantNil {
				if d.CostPerAction != nil {
					t.Errorf("CostPerAction = %v, want nil", *d.CostPerAction)
				}
				return
			}

			if d.CostPerAction == nil {
				t.Fatal("CostPerAction = nil, want value")
			}
			if math.Abs(*d.CostPerAction-tt.wantCPA) > 1e-9 {
				t.Errorf("CostPerAction = %v, want %v", *d.CostPerAction, tt.wantCPA)
			}
		})
	}
}

// TestComputeDerived_ConversionRate tests conversion rate including the
// undefined case.
func TestComputeDerived_ConversionRate(t *testing.T) {
	tests := []struct {
		name     string
		snap     *Snapshot
		wantNil  bool
		wantRate float64
	}{
		{
			name: "normal clicks",
			snap: &Snapshot{
				Clicks: 200,
				Actions: []ActionStat{
					{Kind: "omni_initiated_checkout", Count: 10},
				},
			},
			wantRate: 5.0,
		},
		{
			name: "zero clicks is undefined",
			snap: &Snapshot{
				Actions: []ActionStat{
					{Kind: "initiate_checkout", Count: 10},
				},
			},
			wantNil: true,
		},
		{
			name:    "nil snapshot is undefined",
			snap:    nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDerived(tt.snap)

			if tt.wantNil {
				if d.ConversionRate != nil {
					t.Errorf("ConversionRate = %v, want nil", *d.ConversionRate)
				}
				return
			}

			if d.ConversionRate == nil {
				t.Fatal("ConversionRate = nil, want value")
			}
			if math.Abs(*d.ConversionRate-tt.wantRate) > 1e-9 {
				t.Errorf("ConversionRate = %v, want %v", *d.ConversionRate, tt.wantRate)
			}
		})
	}
}

// TestConversionCount_FirstMatchWins verifies that when a snapshot reports
// the same conversion under several recognized kinds, only the first entry
// is counted, never the sum.
func TestConversionCount_FirstMatchWins(t *testing.T) {
	tests := []struct {
		name    string
		actions []ActionStat
		want    float64
	}{
		{
			name: "single recognized kind",
			actions: []ActionStat{
				{Kind: "initiate_checkout", Count: 7},
			},
			want: 7,
		},
		{
			name: "multiple recognized kinds counts first only",
			actions: []ActionStat{
				{Kind: "offsite_conversion.fb_pixel_initiate_checkout", Count: 9},
				{Kind: "initiate_checkout", Count: 9},
				{Kind: "omni_initiated_checkout", Count: 9},
			},
			want: 9,
		},
		{
			name: "unrecognized kinds are skipped",
			actions: []ActionStat{
				{Kind: "link_click", Count: 50},
				{Kind: "initiate_checkout", Count: 4},
			},
			want: 4,
		},
		{
			name:    "no actions",
			actions: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversionCount(&Snapshot{Actions: tt.actions})
			if got != tt.want {
				t.Errorf("conversionCount() = %v, want %v", got, tt.want)
			}
		})
	}
}
