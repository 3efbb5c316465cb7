package reports

import "strings"

// TrackedMetrics is the fixed set of metric names surfaced in summaries.
// Adding a name here is the only change needed to track a new metric.
var TrackedMetrics = []string{"BP", "TSH", "HbA1c"}

// Summary is the cross-document view of a patient's history: one text corpus
// and the latest known value per tracked metric.
type Summary struct {
	TextCorpus    string                 `json:"textCorpus"`
	HealthMetrics map[string]interface{} `json:"healthMetrics"`
}

// Summarize folds an already-ordered (newest first) history into a summary.
// It is a pure function of its input: no I/O, deterministic.
//
// The text corpus space-joins each record's non-empty diagnosis summary and
// remarks in the given order; records contributing nothing are skipped. Each
// tracked metric independently takes the first non-null value found scanning
// newest first, so different metrics may come from different reports. A
// metric absent from every record keeps an explicit null entry.
func Summarize(records []*ReportRecord) Summary {
	metrics := make(map[string]interface{}, len(TrackedMetrics))
	for _, name := range TrackedMetrics {
		metrics[name] = nil
	}

	var parts []string
	for _, r := range records {
		if r.ParsedData == nil {
			continue
		}
		if s := strings.TrimSpace(r.ParsedData.DiagnosisSummary); s != "" {
			parts = append(parts, s)
		}
		if s := strings.TrimSpace(r.ParsedData.Remarks); s != "" {
			parts = append(parts, s)
		}
		for _, name := range TrackedMetrics {
			if metrics[name] != nil {
				continue
			}
			if m, ok := r.ParsedData.ClinicalMetrics[name]; ok && m.Value != nil {
				metrics[name] = m.Value
			}
		}
	}

	return Summary{
		TextCorpus:    strings.Join(parts, " "),
		HealthMetrics: metrics,
	}
}
