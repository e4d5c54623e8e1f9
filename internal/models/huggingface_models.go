package models

type (
	ClassificationRequest struct {
		Inputs string `json:"inputs"`
	}
	TextPairInput struct {
		Text     string `json:"text"`
		TextPair string `json:"text_pair"`
	}
	TextPairClassificationRequest struct {
		Inputs TextPairInput `json:"inputs"`
	}
)

// ClassificationScore is one label/score entry of a text-classification response.
type ClassificationScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type (
	SummaryParameters struct {
		MinLength int `json:"min_length,omitempty"`
		MaxLength int `json:"max_length,omitempty"`
	}
	SummaryRequest struct {
		Inputs     string            `json:"inputs"`
		Parameters SummaryParameters `json:"parameters"`
	}
	SummaryResponse []struct {
		SummaryText string `json:"summary_text"`
	}
)
