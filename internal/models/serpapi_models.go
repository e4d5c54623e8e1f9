package models

type SerpApiReviewsResponse struct {
	Reviews    []SerpApiReview `json:"reviews"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"serpapi_pagination"`
	Error string `json:"error,omitempty"`
}

type SerpApiReview struct {
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}
