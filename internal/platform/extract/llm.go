package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const extractionInstruction = `You are a clinical document analyst. Read the report text and respond with a single JSON object containing only these optional fields: diagnosisSummary (string), remarks (string), riskLevel (exactly one of "Low", "Moderate", "High"), contextText (string), emotionHints (object with keywords as a string array and inferredTone as a string), clinicalMetrics (object keyed by metric name such as BP, TSH or HbA1c, each entry an object with value, unit, normalRange and organ). Omit every metric that does not appear in the report text; never invent values. Respond with the JSON object only, no prose.`

// LLMConfig configures the remote text-understanding call.
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LLMExtractor calls an OpenAI-compatible chat completions endpoint and
// decodes its answer strictly into ParsedData.
type LLMExtractor struct {
	http  *resty.Client
	model string
}

// NewLLMExtractor builds the HTTP client. Transport errors are retried once;
// malformed model output is not, since it is deterministic enough that a
// retry only doubles the bill.
func NewLLMExtractor(cfg LLMConfig) *LLMExtractor {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &LLMExtractor{http: client, model: cfg.Model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract obtains the document text and runs it through the model. Every
// failure mode surfaces as an error: empty document text, transport failure,
// service-side rejection, and non-conforming output.
func (e *LLMExtractor) Extract(ctx context.Context, doc []byte, contentType string) (*ParsedData, error) {
	text, err := DocumentText(doc, contentType)
	if err != nil {
		return nil, err
	}

	req := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionInstruction},
			{Role: "user", Content: text},
		},
	}
	req.ResponseFormat.Type = "json_object"

	var body chatResponse
	resp, err := e.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		SetError(&body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("call extraction service: %w", err)
	}
	if resp.IsError() {
		if body.Error != nil && body.Error.Message != "" {
			return nil, fmt.Errorf("extraction service: %s", body.Error.Message)
		}
		return nil, fmt.Errorf("extraction service returned %s", resp.Status())
	}
	if len(body.Choices) == 0 {
		return nil, fmt.Errorf("extraction service returned no choices")
	}

	return DecodeParsedData([]byte(body.Choices[0].Message.Content))
}
