// Package service provides the business logic for prompt management: the
// library mutation surface, use tracking, and search entry points.
package service

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	apperrors "github.com/kartikmehra/flowprompt/internal/errors"
	"github.com/kartikmehra/flowprompt/internal/models"
	"github.com/kartikmehra/flowprompt/internal/search"
	"github.com/kartikmehra/flowprompt/internal/storage"
)

// Service owns the in-memory library and persists mutations through the
// store. All methods are safe for concurrent use; searches observe a
// consistent snapshot of the library, never a view mutated mid-scan.
//
// Persistence is best-effort by design: a failed save is logged and the
// in-memory mutation stays visible — it is never rolled back.
type Service struct {
	mu      sync.RWMutex
	store   *storage.Store
	library models.Library
}

// NewService creates a service backed by a store rooted at rootPath
// (empty means the default library location) and loads the library.
func NewService(rootPath string) (*Service, error) {
	store, err := storage.NewStore(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	lib, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	return &Service{store: store, library: lib}, nil
}

// RootPath returns the directory holding the library.
func (s *Service) RootPath() string {
	return s.store.RootPath()
}

// persist saves the library, logging instead of failing: callers must
// not see an in-memory mutation rolled back because a save failed.
// Callers hold the write lock.
func (s *Service) persist() {
	if err := s.store.Save(s.library); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", apperrors.StorageError("save library", err))
	}
}

// Library returns a snapshot of the whole library.
func (s *Service) Library() models.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Categories returns a snapshot of all categories.
func (s *Service) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked().Categories
}

// snapshotLocked copies the category list. Prompt slices are treated as
// immutable: every mutation replaces them copy-on-write, so sharing the
// backing arrays with readers is safe.
func (s *Service) snapshotLocked() models.Library {
	cats := make([]models.Category, len(s.library.Categories))
	copy(cats, s.library.Categories)
	return models.Library{Version: s.library.Version, Categories: cats}
}

// Search runs the ranked search over a consistent library snapshot.
func (s *Service) Search(query string) []models.SearchResult {
	return search.Search(query, s.Categories())
}

// FilterPrompts narrows all prompts with a fuzzy subsequence match over
// name, tags, and content. Unlike Search it has no scoring contract; the
// launcher list uses it for as-you-type filtering.
func (s *Service) FilterPrompts(query string) []models.Prompt {
	prompts := s.Library().AllPrompts()
	if query == "" {
		return prompts
	}

	var searchStrings []string
	for _, p := range prompts {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s",
			p.Name,
			strings.Join(p.Tags, " "),
			p.Content))
	}

	matches := fuzzy.Find(query, searchStrings)

	var results []models.Prompt
	for _, match := range matches {
		results = append(results, prompts[match.Index])
	}
	return results
}

// AddCategory creates and persists a new category.
func (s *Service) AddCategory(name string) (models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return models.Category{}, apperrors.ValidationError("category name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := models.NewCategory(name)
	s.library.Categories = append(s.library.Categories, cat)
	s.persist()
	return cat, nil
}

// RenameCategory changes a category's display name. The ID is stable
// across renames.
func (s *Service) RenameCategory(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ValidationError("category name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.categoryIndexLocked(id)
	if idx < 0 {
		return apperrors.NotFoundError("category")
	}
	s.library.Categories[idx].Name = name
	s.persist()
	return nil
}

// DeleteCategory removes a category and discards its prompts. Unknown
// IDs are a no-op.
func (s *Service) DeleteCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats := s.library.Categories[:0:0]
	for _, cat := range s.library.Categories {
		if cat.ID != id {
			cats = append(cats, cat)
		}
	}
	s.library.Categories = cats
	s.persist()
}

// AddPrompt inserts a prompt into the given category. Inserting into a
// nonexistent category is caller misuse and fails loudly; it is not a
// silent no-op.
func (s *Service) AddPrompt(categoryID string, p models.Prompt) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.ValidationError("prompt title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.categoryIndexLocked(categoryID)
	if idx < 0 {
		return apperrors.NotFoundError("category")
	}

	// A prompt ID lives in at most one category; re-adding an existing
	// ID would silently shadow the original in searches.
	if s.promptExistsLocked(p.ID) {
		return apperrors.AlreadyExistsError("prompt")
	}

	s.replacePromptsLocked(idx, append(promptsCopy(s.library.Categories[idx].Prompts), p))
	s.persist()
	return nil
}

// UpdatePrompt replaces a prompt in place within its category.
func (s *Service) UpdatePrompt(categoryID string, p models.Prompt) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.ValidationError("prompt title must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catIdx := s.categoryIndexLocked(categoryID)
	if catIdx < 0 {
		return apperrors.NotFoundError("category")
	}

	prompts := promptsCopy(s.library.Categories[catIdx].Prompts)
	for i := range prompts {
		if prompts[i].ID == p.ID {
			prompts[i] = p
			s.replacePromptsLocked(catIdx, prompts)
			s.persist()
			return nil
		}
	}
	return apperrors.NotFoundError("prompt")
}

// DeletePrompt removes a prompt from whichever category holds it.
// Unknown IDs are a no-op.
func (s *Service) DeletePrompt(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for catIdx, cat := range s.library.Categories {
		prompts := cat.Prompts[:0:0]
		removed := false
		for _, p := range cat.Prompts {
			if p.ID == id {
				removed = true
				continue
			}
			prompts = append(prompts, p)
		}
		if removed {
			s.replacePromptsLocked(catIdx, prompts)
		}
	}
	s.persist()
}

// MovePrompt relocates a prompt to another category: remove from the
// old home, insert into the new one, never a copy.
func (s *Service) MovePrompt(promptID, toCategoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	destIdx := s.categoryIndexLocked(toCategoryID)
	if destIdx < 0 {
		return apperrors.NotFoundError("category")
	}

	for catIdx, cat := range s.library.Categories {
		for i, p := range cat.Prompts {
			if p.ID != promptID {
				continue
			}
			if catIdx == destIdx {
				return nil
			}
			remaining := promptsCopy(cat.Prompts[:i])
			remaining = append(remaining, cat.Prompts[i+1:]...)
			s.replacePromptsLocked(catIdx, remaining)
			s.replacePromptsLocked(destIdx, append(promptsCopy(s.library.Categories[destIdx].Prompts), p))
			s.persist()
			return nil
		}
	}
	return apperrors.NotFoundError("prompt")
}

// Prompt returns a prompt and its owning category ID.
func (s *Service) Prompt(id string) (models.Prompt, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, cat := range s.library.Categories {
		for _, p := range cat.Prompts {
			if p.ID == id {
				return p, cat.ID, nil
			}
		}
	}
	return models.Prompt{}, "", apperrors.NotFoundError("prompt")
}

// RecordUse bumps a prompt's use count by exactly one and refreshes its
// last-used timestamp; the two fields change together. An unknown ID is
// a no-op, not an error.
func (s *Service) RecordUse(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for catIdx, cat := range s.library.Categories {
		for i, p := range cat.Prompts {
			if p.ID != id {
				continue
			}
			now := time.Now()
			prompts := promptsCopy(cat.Prompts)
			prompts[i].UseCount++
			prompts[i].LastUsedAt = &now
			s.replacePromptsLocked(catIdx, prompts)
			s.persist()
			return
		}
	}
}

// RecentlyUsed returns up to limit prompts ordered by most recent use.
func (s *Service) RecentlyUsed(limit int) []models.Prompt {
	var used []models.Prompt
	for _, p := range s.Library().AllPrompts() {
		if p.LastUsedAt != nil {
			used = append(used, p)
		}
	}

	sort.SliceStable(used, func(i, j int) bool {
		return used[i].LastUsedAt.After(*used[j].LastUsedAt)
	})

	if limit > 0 && len(used) > limit {
		used = used[:limit]
	}
	return used
}

// Favorites returns every prompt the user flagged as a favorite.
func (s *Service) Favorites() []models.Prompt {
	var favs []models.Prompt
	for _, p := range s.Library().AllPrompts() {
		if p.Favorite {
			favs = append(favs, p)
		}
	}
	return favs
}

func (s *Service) categoryIndexLocked(id string) int {
	for i, cat := range s.library.Categories {
		if cat.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) promptExistsLocked(id string) bool {
	for _, cat := range s.library.Categories {
		for _, p := range cat.Prompts {
			if p.ID == id {
				return true
			}
		}
	}
	return false
}

func (s *Service) replacePromptsLocked(catIdx int, prompts []models.Prompt) {
	s.library.Categories[catIdx].Prompts = prompts
}

func promptsCopy(prompts []models.Prompt) []models.Prompt {
	out := make([]models.Prompt, len(prompts))
	copy(out, prompts)
	return out
}
