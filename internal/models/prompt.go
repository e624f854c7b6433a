package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is a stored, reusable block of text the user pastes elsewhere.
type Prompt struct {
	ID         string     `json:"id"`
	Name       string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	UseCount   int        `json:"useCount"`
	Favorite   bool       `json:"isFavorite"`
}

// NewPrompt creates a prompt with a fresh ID and creation timestamp.
func NewPrompt(name, content string, tags ...string) Prompt {
	return Prompt{
		ID:        uuid.NewString(),
		Name:      name,
		Content:   content,
		Tags:      tags,
		CreatedAt: time.Now(),
	}
}

// HasTag reports whether the prompt carries the tag (case-insensitive).
func (p Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Implement list.Item interface for the bubbles list component

// FilterValue returns the value used for filtering in lists
func (p Prompt) FilterValue() string {
	return cleanString(p.Name + " " + strings.Join(p.Tags, " "))
}

// Title satisfies the list.Item interface
func (p Prompt) Title() string {
	if p.Name != "" {
		return cleanString(p.Name)
	}
	return cleanString(p.ID)
}

// Description satisfies the list.Item interface
func (p Prompt) Description() string {
	var parts []string

	snippet := cleanString(p.Content)
	if len(snippet) > 60 {
		snippet = snippet[:57] + "..."
	}
	if snippet != "" {
		parts = append(parts, snippet)
	}

	if len(p.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(p.Tags, ", "))
	}

	if p.UseCount > 0 {
		parts = append(parts, "Used "+strconv.Itoa(p.UseCount)+"x")
	}

	return cleanString(strings.Join(parts, " • "))
}

// Category is a named grouping of prompts. A prompt belongs to exactly
// one category at a time; moving a prompt between categories is a
// remove-then-insert, never a copy.
type Category struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Prompts []Prompt `json:"prompts"`
}

// NewCategory creates an empty category with a fresh ID.
func NewCategory(name string) Category {
	return Category{
		ID:      uuid.NewString(),
		Name:    name,
		Prompts: []Prompt{},
	}
}

// PromptCount returns the number of prompts in the category.
func (c Category) PromptCount() int {
	return len(c.Prompts)
}

// Library is the persisted prompt document: a versioned list of categories.
type Library struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}

// NewLibrary returns an empty library at the current format version.
func NewLibrary() Library {
	return Library{Version: 1, Categories: []Category{}}
}

// AllPrompts returns every prompt across all categories in encounter order.
func (l Library) AllPrompts() []Prompt {
	var prompts []Prompt
	for _, cat := range l.Categories {
		prompts = append(prompts, cat.Prompts...)
	}
	return prompts
}

// cleanString removes control characters that could break list rendering
func cleanString(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
		} else if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return strings.TrimSpace(cleaned)
}
