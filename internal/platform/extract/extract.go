// Package extract turns an uploaded clinical document into structured
// findings. Extraction first obtains a textual representation of the document
// and then invokes a remote text-understanding model whose output is decoded
// strictly: non-conforming output is an error, never a default ParsedData,
// since an empty result would misrepresent "no findings" as "not examined".
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// EmotionHints carries tone signals inferred from the report narrative.
type EmotionHints struct {
	Keywords     []string `json:"keywords,omitempty"`
	InferredTone string   `json:"inferredTone,omitempty"`
}

// ClinicalMetric is one named measurement found in the report. Value is a
// string or a number depending on the metric ("120/80" vs 9.5).
type ClinicalMetric struct {
	Value       interface{} `json:"value"`
	Unit        string      `json:"unit,omitempty"`
	NormalRange string      `json:"normalRange,omitempty"`
	Organ       string      `json:"organ,omitempty"`
}

// ParsedData is the structured findings object persisted with each report.
// Metrics absent from the source text are absent from ClinicalMetrics; the
// model is instructed never to fabricate them.
type ParsedData struct {
	DiagnosisSummary string                    `json:"diagnosisSummary,omitempty"`
	Remarks          string                    `json:"remarks,omitempty"`
	RiskLevel        string                    `json:"riskLevel,omitempty"`
	ContextText      string                    `json:"contextText,omitempty"`
	EmotionHints     *EmotionHints             `json:"emotionHints,omitempty"`
	ClinicalMetrics  map[string]ClinicalMetric `json:"clinicalMetrics,omitempty"`
}

var validRiskLevels = map[string]bool{
	"Low": true, "Moderate": true, "High": true,
}

// Extractor produces structured findings from raw document bytes.
type Extractor interface {
	Extract(ctx context.Context, doc []byte, contentType string) (*ParsedData, error)
}

// DecodeParsedData parses model output into ParsedData, rejecting unknown
// fields and invalid risk levels.
func DecodeParsedData(data []byte) (*ParsedData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var pd ParsedData
	if err := dec.Decode(&pd); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}
	if pd.RiskLevel != "" && !validRiskLevels[pd.RiskLevel] {
		return nil, fmt.Errorf("invalid riskLevel %q", pd.RiskLevel)
	}
	return &pd, nil
}
