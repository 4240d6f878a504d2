package scam_detector

import "encoding/json"

// Label is the verdict assigned to a message.
type Label string

const (
	LabelScam      Label = "Scam"
	LabelNotScam   Label = "Not Scam"
	LabelUncertain Label = "Uncertain"
)

var validLabels = []Label{LabelScam, LabelNotScam, LabelUncertain}

// ScamDetectionOutput is the validated verdict returned by the model
type ScamDetectionOutput struct {
	Label       Label    `json:"label"`        // "Scam" | "Not Scam" | "Uncertain"
	Reasoning   string   `json:"reasoning"`    // step-by-step analysis of why the label was assigned
	Intent      string   `json:"intent"`       // short description of the sender's intent
	RiskFactors []string `json:"risk_factors"` // red flags identified in the message
}

// ClassifyRequest represents the payload of the HTTP and CloudEvent functions
type ClassifyRequest struct {
	Message  string `json:"message"`
	Strategy string `json:"strategy,omitempty"`
}

// ClassifyResponse is written back to HTTP callers
type ClassifyResponse struct {
	RequestID string               `json:"request_id"`
	Model     string               `json:"model"`
	Result    *ScamDetectionOutput `json:"result"`
}

// OpenAIResponse represents the response structure from the OpenAI Responses API
type OpenAIResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string      `json:"type"`
			Text TextContent `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output,omitempty"`
	OutputText string `json:"output_text,omitempty"`
}

// GeminiResponse represents the generateContent response structure
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// TextContent accepts both the documented object shape and simple strings.
type TextContent struct {
	Value  string          `json:"value,omitempty"`
	Parsed json.RawMessage `json:"parsed,omitempty"`
}
