package model

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadyResponse struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// SummaryRequest is a validated POST /earnings_transcript_summary body.
type SummaryRequest struct {
	CompanyName    string
	TranscriptText string
}
