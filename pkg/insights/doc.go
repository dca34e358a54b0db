// Package insights models campaign performance data and the providers that
// supply it.
//
// # Overview
//
// A Snapshot is an immutable read of a campaign's raw delivery counters for
// one reporting window. Derived metrics (ROAS, cost per action, conversion
// rate) are computed from a snapshot and fixed business constants via
// ComputeDerived; a derived metric that is undefined for the snapshot is nil,
// never zero-filled.
//
// # Providers
//
// The Provider interface abstracts the metrics source:
//
//   - HTTPProvider fetches snapshots from a metrics API with bounded
//     timeouts and retry on transient upstream failures.
//   - StaticProvider serves fixtures from memory for demos and tests.
//
// A provider returning (nil, nil) means the source responded but has no data
// for the window; consumers treat every raw metric as zero in that case.
//
// # Basic Usage
//
//	provider, err := insights.NewHTTPProvider(insights.HTTPConfig{
//	    BaseURL:  "https://ads.example.com/v1",
//	    APIToken: os.Getenv("ADS_API_TOKEN"),
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snap, err := provider.FetchSnapshot(ctx, "camp-001")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	derived := insights.ComputeDerived(snap)
package insights
