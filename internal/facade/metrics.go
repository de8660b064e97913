package facade

import "edc/internal/metrics"

// processMetrics tracks belief-update volume across every network and
// fuzzy engine in this process, independent of which handle a given
// operation targets (spec.md §9's global mutable registries have the same
// process-wide scope).
var processMetrics = metrics.NewProbabilisticMetrics()

// MetricsSnapshotResult wires a metrics.ProbabilisticMetrics.GetStats
// snapshot.
type MetricsSnapshotResult struct {
	UpdatesTotal         int64   `json:"updates_total"`
	UpdatesUninformative int64   `json:"updates_uninformative"`
	UpdatesError         int64   `json:"updates_error"`
	BeliefsCreated       int64   `json:"beliefs_created"`
	BeliefsCombined      int64   `json:"beliefs_combined"`
	UninformativeRate    float64 `json:"uninformative_rate"`
	ErrorRate            float64 `json:"error_rate"`
}

// MetricsSnapshot implements metrics.snapshot, reporting belief-update
// volume accumulated in this process by fuzzy.combine_evidence,
// net.update_evidence, net.add_node (beliefs created, errors) and failed
// net.propagate calls (errors).
func MetricsSnapshot(EmptyRequest) *Envelope {
	stats := processMetrics.GetStats()
	return ok(MetricsSnapshotResult{
		UpdatesTotal:         stats["updates_total"],
		UpdatesUninformative: stats["updates_uninformative"],
		UpdatesError:         stats["updates_error"],
		BeliefsCreated:       stats["beliefs_created"],
		BeliefsCombined:      stats["beliefs_combined"],
		UninformativeRate:    processMetrics.GetUninformativeRate(),
		ErrorRate:            processMetrics.GetErrorRate(),
	})
}
