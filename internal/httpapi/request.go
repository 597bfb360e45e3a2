package httpapi

import (
	"encoding/json"
	"mime"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"earningscall/internal/model"
	"earningscall/internal/summarizer"
	"earningscall/internal/transcript"
)

const (
	msgNotJSON        = "Request must be in JSON format"
	msgMissingFields  = "Both 'company_name' and 'transcript_text' fields are required"
	msgCompanyName    = "The 'company_name' must be a string"
	msgSummaryFailure = "An error occurred while processing the transcript"
)

var numberPrinter = message.NewPrinter(language.English)

type validationError string

func (e validationError) Error() string { return string(e) }

func transcriptLimitError(maxWords int) validationError {
	return validationError(numberPrinter.Sprintf("The 'transcript_text' must be non-empty and no longer than %d words", maxWords))
}

func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// parseSummaryRequest checks key presence first, then the transcript size.
// Valid JSON that is not an object has no keys at all. A null or blank
// company_name falls back to the default label.
func parseSummaryRequest(body json.RawMessage, maxWords int) (model.SummaryRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.SummaryRequest{}, validationError(msgMissingFields)
	}

	rawCompany, hasCompany := fields["company_name"]
	rawTranscript, hasTranscript := fields["transcript_text"]
	if !hasCompany || !hasTranscript {
		return model.SummaryRequest{}, validationError(msgMissingFields)
	}

	var company *string
	if err := json.Unmarshal(rawCompany, &company); err != nil {
		return model.SummaryRequest{}, validationError(msgCompanyName)
	}
	companyName := summarizer.DefaultCompanyName
	if company != nil && strings.TrimSpace(*company) != "" {
		companyName = *company
	}

	var text string
	if err := json.Unmarshal(rawTranscript, &text); err != nil {
		return model.SummaryRequest{}, transcriptLimitError(maxWords)
	}
	if words := transcript.CountWords(text); words == 0 || words > maxWords {
		return model.SummaryRequest{}, transcriptLimitError(maxWords)
	}

	return model.SummaryRequest{CompanyName: companyName, TranscriptText: text}, nil
}
