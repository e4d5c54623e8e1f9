package models

// OpenAIClassification is the JSON object the chat model is asked to answer with.
type OpenAIClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
