// Package search implements the weighted ranking used by the launcher.
//
// Search is a pure function over an in-memory library snapshot: the same
// query against the same categories always yields the same ordered
// results. Scoring weights are tuned for launcher feel, not relevance
// modeling; treat them as policy constants.
package search

import (
	"sort"
	"strings"

	"github.com/kartikmehra/flowprompt/internal/models"
)

// Scoring weights. Title clauses are mutually exclusive (a prefix match
// shadows the weaker containment and subsequence clauses); everything
// else is additive.
const (
	scoreTitlePrefix      = 100
	scoreTitleContains    = 60
	scoreTitleSubsequence = 30
	scoreTagExact         = 50
	scoreTagPrefix        = 30
	scoreCategoryContains = 20
	scoreContentContains  = 10
	usageBoostCap         = 10
)

// Search scans every prompt in every category and returns those with a
// positive score, ordered best-first. Ties keep encounter order: category
// order, then prompt order within a category. A query that is empty after
// trimming returns no results.
func Search(query string, categories []models.Category) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var results []models.SearchResult

	for _, cat := range categories {
		for _, prompt := range cat.Prompts {
			score := computeScore(q, prompt, cat.Name)
			if score > 0 {
				results = append(results, models.SearchResult{
					Prompt:       prompt,
					CategoryID:   cat.ID,
					CategoryName: cat.Name,
					Score:        score,
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

func computeScore(query string, prompt models.Prompt, categoryName string) int {
	score := 0
	title := strings.ToLower(prompt.Name)
	content := strings.ToLower(prompt.Content)
	catName := strings.ToLower(categoryName)

	tags := make([]string, len(prompt.Tags))
	for i, tag := range prompt.Tags {
		tags[i] = strings.ToLower(tag)
	}

	// Exact prefix match on title
	if strings.HasPrefix(title, query) {
		score += scoreTitlePrefix
	} else if strings.Contains(title, query) {
		// Title contains query
		score += scoreTitleContains
	} else if subsequenceMatch(query, title) {
		// Fuzzy match on title
		score += scoreTitleSubsequence
	}

	// Tag exact match
	for _, tag := range tags {
		if tag == query {
			score += scoreTagExact
			break
		}
	}

	// Tag prefix match
	for _, tag := range tags {
		if strings.HasPrefix(tag, query) {
			score += scoreTagPrefix
			break
		}
	}

	// Category match
	if strings.Contains(catName, query) {
		score += scoreCategoryContains
	}

	// Content contains
	if strings.Contains(content, query) {
		score += scoreContentContains
	}

	// Boost recently/frequently used
	if prompt.UseCount < usageBoostCap {
		score += prompt.UseCount
	} else {
		score += usageBoostCap
	}

	return score
}

// subsequenceMatch reports whether every rune of query appears in text in
// order, not necessarily contiguously.
func subsequenceMatch(query, text string) bool {
	qr := []rune(query)
	qi := 0
	for _, r := range text {
		if qi < len(qr) && r == qr[qi] {
			qi++
		}
	}
	return qi == len(qr)
}
