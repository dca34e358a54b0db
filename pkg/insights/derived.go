package insights

// averageOrderValue is the fixed business constant used to estimate revenue
// from checkout conversions, in the account currency.
const averageOrderValue = 50.0

// checkoutActionKinds are the platform action types recognized as
// "checkout initiated" conversions. The first entry in a snapshot's action
// list whose kind appears here supplies the conversion count; entries are
// not summed.
var checkoutActionKinds = map[string]bool{
	"offsite_conversion.fb_pixel_initiate_checkout": true,
	"initiate_checkout":                             true,
	"omni_initiated_checkout":                       true,
}

// Derived holds metrics computed from a Snapshot and fixed business
// constants. A nil pointer means the metric is undefined for the snapshot
// (e.g. ROAS with zero spend); it is never zero-filled.
type Derived struct {
	// ROAS is estimated revenue divided by spend. Nil when spend <= 0.
	ROAS *float64 `json:"roas"`

	// CostPerAction is spend divided by the conversion count. Nil when
	// the conversion count is zero.
	CostPerAction *float64 `json:"cost_per_action"`

	// ConversionRate is conversions per click as a percentage. Nil when
	// clicks is zero.
	ConversionRate *float64 `json:"conversion_rate"`

	// Conversions is the checkout conversion count used above.
	Conversions float64 `json:"conversions"`
}

// ComputeDerived computes derived metrics from a snapshot. A nil snapshot
// yields a Derived with every metric undefined, matching the zero-data
// semantics of raw field resolution.
func ComputeDerived(snap *Snapshot) *Derived {
	d := &Derived{}
	if snap == nil {
		return d
	}

	d.Conversions = conversionCount(snap)

	if snap.Spend > 0 {
		revenue := d.Conversions * averageOrderValue
		roas := revenue / snap.Spend
		d.ROAS = &roas
	}

	if d.Conversions > 0 {
		cpa := snap.Spend / d.Conversions
		d.CostPerAction = &cpa
	}

	if snap.Clicks > 0 {
		rate := d.Conversions / snap.Clicks * 100
		d.ConversionRate = &rate
	}

	return d
}

// conversionCount returns the count of the first action entry whose kind is
// a recognized checkout kind. Platforms report the same conversion under
// several overlapping kinds, so summing would double count.
func conversionCount(snap *Snapshot) float64 {
	for _, a := range snap.Actions {
		if checkoutActionKinds[a.Kind] {
			return a.Count
		}
	}
	return 0
}
