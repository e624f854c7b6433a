package models

// SearchResult pairs a prompt with its owning category and a relevance
// score. Results are derived fresh on every search and never persisted.
type SearchResult struct {
	Prompt       Prompt `json:"prompt"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Score        int    `json:"score"`
}
