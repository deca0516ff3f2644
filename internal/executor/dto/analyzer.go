package dto

// NewsAnalysisResponse is the raw JSON contract expected from the analysis model.
// Pointers distinguish an absent field from a zero value.
type NewsAnalysisResponse struct {
	Sentiment *float64 `json:"sentiment"`
	Insight   *string  `json:"insight"`
}

// NewsAnalysisResult is a validated analysis with defaults applied.
type NewsAnalysisResult struct {
	Sentiment float64 `json:"sentiment"`
	Insight   string  `json:"insight"`
}
