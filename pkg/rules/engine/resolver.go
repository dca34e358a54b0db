package engine

import (
	"github.com/helios-hq/meridian/pkg/insights"
	"github.com/helios-hq/meridian/pkg/rules"
)

// ResolveField maps a condition field to its numeric value for one
// campaign's evaluation window.
//
// Raw fields resolve to 0 when the snapshot is absent. Derived fields
// resolve to a MissingValueError when their input makes them undefined
// (for example roas with zero spend). Fields outside the closed set
// resolve to an UnknownFieldError. Neither failure aborts rule
// evaluation; the owning condition simply evaluates to false.
func ResolveField(field string, snap *insights.Snapshot, derived *insights.Derived) (float64, error) {
	if snap == nil {
		snap = &insights.Snapshot{}
	}
	if derived == nil {
		derived = &insights.Derived{}
	}

	switch field {
	case rules.FieldSpend:
		return snap.Spend, nil
	case rules.FieldClicks:
		return snap.Clicks, nil
	case rules.FieldImpressions:
		return snap.Impressions, nil
	case rules.FieldCTR:
		return snap.CTR, nil
	case rules.FieldCPC:
		return snap.CPC, nil
	case rules.FieldCPM:
		return snap.CPM, nil
	case rules.FieldReach:
		return snap.Reach, nil
	case rules.FieldFrequency:
		return snap.Frequency, nil

	case rules.FieldROAS:
		if derived.ROAS == nil {
			return 0, &MissingValueError{Field: field, Reason: "spend is zero or negative"}
		}
		return *derived.ROAS, nil
	case rules.FieldCostPerAction:
		if derived.CostPerAction == nil {
			return 0, &MissingValueError{Field: field, Reason: "no conversions recorded"}
		}
		return *derived.CostPerAction, nil
	case rules.FieldConversionRate:
		if derived.ConversionRate == nil {
			return 0, &MissingValueError{Field: field, Reason: "no clicks recorded"}
		}
		return *derived.ConversionRate, nil

	default:
		return 0, &UnknownFieldError{Field: field}
	}
}
