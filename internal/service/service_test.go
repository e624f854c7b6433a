package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/kartikmehra/flowprompt/internal/errors"
	"github.com/kartikmehra/flowprompt/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	// Start from an empty library so tests control the contents.
	for _, cat := range svc.Categories() {
		svc.DeleteCategory(cat.ID)
	}
	return svc
}

func TestAddPromptToUnknownCategoryFailsLoudly(t *testing.T) {
	svc := newTestService(t)

	err := svc.AddPrompt("no-such-category", models.NewPrompt("Title", "content"))
	if err == nil {
		t.Fatal("inserting into a nonexistent category must be an error, not a silent no-op")
	}

	appErr := apperrors.GetAppError(err)
	if appErr.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", appErr.Code)
	}
}

func TestAddPromptRequiresTitle(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	if err := svc.AddPrompt(cat.ID, models.NewPrompt("   ", "content")); err == nil {
		t.Error("saving a prompt with an empty title must fail")
	}
}

func TestAddPromptRejectsDuplicateID(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	other, err := svc.AddCategory("Writing")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	p := models.NewPrompt("Code Review", "Review this code...")
	if err := svc.AddPrompt(cat.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	// Same ID again, even in a different category, must be rejected.
	err = svc.AddPrompt(other.ID, p)
	if err == nil {
		t.Fatal("re-adding an existing prompt ID must fail")
	}
	if appErr := apperrors.GetAppError(err); appErr.Code != apperrors.ErrCodeAlreadyExists {
		t.Errorf("expected ALREADY_EXISTS, got %s", appErr.Code)
	}
}

func TestFailedSaveDoesNotRollBackMutation(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "library")

	svc, err := NewService(root)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	for _, cat := range svc.Categories() {
		svc.DeleteCategory(cat.ID)
	}

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	p := models.NewPrompt("Code Review", "Review this code...")
	if err := svc.AddPrompt(cat.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	// Break persistence: replace the library directory with a regular
	// file so every subsequent save fails, regardless of the uid the
	// tests run under.
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if err := os.WriteFile(root, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	svc.RecordUse(p.ID)

	got, _, err := svc.Prompt(p.ID)
	if err != nil {
		t.Fatalf("Prompt failed: %v", err)
	}
	if got.UseCount != 1 || got.LastUsedAt == nil {
		t.Errorf("use recording rolled back after failed save: count=%d lastUsed=%v",
			got.UseCount, got.LastUsedAt)
	}

	// Structural mutations stay visible too.
	if err := svc.AddPrompt(cat.ID, models.NewPrompt("Another", "content")); err != nil {
		t.Fatalf("AddPrompt after broken storage failed: %v", err)
	}
	if n := len(svc.Library().AllPrompts()); n != 2 {
		t.Errorf("expected 2 prompts in memory despite failing saves, got %d", n)
	}
}

func TestRecordUseAtomicity(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	p := models.NewPrompt("Code Review", "Review this code...", "review")
	if err := svc.AddPrompt(cat.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	const n = 5
	var lastStamp int64
	for i := 0; i < n; i++ {
		svc.RecordUse(p.ID)
		got, _, err := svc.Prompt(p.ID)
		if err != nil {
			t.Fatalf("Prompt lookup failed: %v", err)
		}
		if got.UseCount != i+1 {
			t.Fatalf("after %d uses, count = %d", i+1, got.UseCount)
		}
		if got.LastUsedAt == nil {
			t.Fatal("lastUsedAt must be set on every recorded use")
		}
		if stamp := got.LastUsedAt.UnixNano(); stamp < lastStamp {
			t.Fatal("lastUsedAt went backwards")
		} else {
			lastStamp = stamp
		}
	}

	got, _, err := svc.Prompt(p.ID)
	if err != nil {
		t.Fatalf("Prompt lookup failed: %v", err)
	}
	if got.UseCount != n {
		t.Errorf("expected use count %d, got %d", n, got.UseCount)
	}
}

func TestRecordUseUnknownIDIsNoop(t *testing.T) {
	svc := newTestService(t)
	// Must not panic or error.
	svc.RecordUse("no-such-prompt")
}

func TestDeleteCategoryDiscardsPrompts(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Temp")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	p := models.NewPrompt("Doomed", "gone soon")
	if err := svc.AddPrompt(cat.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	svc.DeleteCategory(cat.ID)

	if _, _, err := svc.Prompt(p.ID); err == nil {
		t.Error("prompt should be gone with its category")
	}
	if len(svc.Categories()) != 0 {
		t.Error("category should be deleted")
	}
}

func TestMovePromptIsRemoveThenInsert(t *testing.T) {
	svc := newTestService(t)

	src, err := svc.AddCategory("Source")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	dst, err := svc.AddCategory("Dest")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	p := models.NewPrompt("Mover", "content")
	if err := svc.AddPrompt(src.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	if err := svc.MovePrompt(p.ID, dst.ID); err != nil {
		t.Fatalf("MovePrompt failed: %v", err)
	}

	_, owner, err := svc.Prompt(p.ID)
	if err != nil {
		t.Fatalf("Prompt lookup failed: %v", err)
	}
	if owner != dst.ID {
		t.Errorf("expected prompt owned by %s, got %s", dst.ID, owner)
	}

	// Exactly one membership across the whole library.
	count := 0
	for _, cat := range svc.Categories() {
		for _, prompt := range cat.Prompts {
			if prompt.ID == p.ID {
				count++
			}
		}
	}
	if count != 1 {
		t.Errorf("prompt appears %d times, want exactly 1", count)
	}
}

func TestSearchUsesLibrarySnapshot(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	p := models.NewPrompt("Code Review", "Review this code...", "review", "quality")
	if err := svc.AddPrompt(cat.ID, p); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	results := svc.Search("code")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Prompt.ID != p.ID {
		t.Errorf("unexpected result prompt %s", results[0].Prompt.ID)
	}
	if results[0].Score < 100 {
		t.Errorf("title prefix match should score at least 100, got %d", results[0].Score)
	}
	if results[0].CategoryName != "Coding" {
		t.Errorf("expected owning category name, got %q", results[0].CategoryName)
	}
}

func TestFilterPromptsFuzzy(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	if err := svc.AddPrompt(cat.ID, models.NewPrompt("Code Review", "Review this code...")); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}
	if err := svc.AddPrompt(cat.ID, models.NewPrompt("Summarize", "Summarize the text")); err != nil {
		t.Fatalf("AddPrompt failed: %v", err)
	}

	results := svc.FilterPrompts("cdrv")
	if len(results) == 0 {
		t.Fatal("expected fuzzy match for cdrv")
	}
	if results[0].Name != "Code Review" {
		t.Errorf("expected Code Review first, got %q", results[0].Name)
	}
}

func TestRecentlyUsedOrder(t *testing.T) {
	svc := newTestService(t)

	cat, err := svc.AddCategory("Coding")
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	a := models.NewPrompt("First", "a")
	b := models.NewPrompt("Second", "b")
	for _, p := range []models.Prompt{a, b} {
		if err := svc.AddPrompt(cat.ID, p); err != nil {
			t.Fatalf("AddPrompt failed: %v", err)
		}
	}

	svc.RecordUse(a.ID)
	time.Sleep(time.Millisecond) // distinct lastUsedAt stamps on coarse clocks
	svc.RecordUse(b.ID)

	recent := svc.RecentlyUsed(5)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recently used, got %d", len(recent))
	}
	if recent[0].ID != b.ID {
		t.Errorf("most recently used should come first")
	}

	if got := svc.RecentlyUsed(1); len(got) != 1 {
		t.Errorf("limit not applied: got %d", len(got))
	}
}
