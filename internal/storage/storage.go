// Package storage persists the prompt library as a single JSON document
// on disk. The format carries a version field; anything beyond reading
// and writing the current version is out of scope here.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kartikmehra/flowprompt/internal/models"
)

const libraryFile = "prompts.json"

// Store handles file system operations for the prompt library.
type Store struct {
	rootPath string
}

// NewStore creates a store rooted at rootPath. An empty rootPath falls
// back to $FLOWPROMPT_DIR, then ~/.flowprompt.
func NewStore(rootPath string) (*Store, error) {
	if rootPath == "" {
		rootPath = os.Getenv("FLOWPROMPT_DIR")
	}
	if rootPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		rootPath = filepath.Join(homeDir, ".flowprompt")
	}

	if err := os.MkdirAll(rootPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	return &Store{rootPath: rootPath}, nil
}

// RootPath returns the directory holding the library file.
func (s *Store) RootPath() string {
	return s.rootPath
}

// LibraryPath returns the full path of the library file.
func (s *Store) LibraryPath() string {
	return filepath.Join(s.rootPath, libraryFile)
}

// Load reads the library from disk. A missing file is not an error: the
// store seeds and saves the starter library, matching first-run behavior.
func (s *Store) Load() (models.Library, error) {
	raw, err := os.ReadFile(s.LibraryPath())
	if os.IsNotExist(err) {
		lib := SampleLibrary()
		if saveErr := s.Save(lib); saveErr != nil {
			return lib, fmt.Errorf("failed to seed library: %w", saveErr)
		}
		return lib, nil
	}
	if err != nil {
		return models.Library{}, fmt.Errorf("failed to read library file: %w", err)
	}

	var lib models.Library
	if err := json.Unmarshal(raw, &lib); err != nil {
		return models.Library{}, fmt.Errorf("failed to parse library file: %w", err)
	}

	return lib, nil
}

// Save writes the library to disk atomically: marshal to a temp file in
// the same directory, then rename over the target.
func (s *Store) Save(lib models.Library) error {
	raw, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	tmp, err := os.CreateTemp(s.rootPath, libraryFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.LibraryPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace library file: %w", err)
	}

	return nil
}

// SampleLibrary returns the starter categories shipped on first run.
func SampleLibrary() models.Library {
	return models.Library{
		Version: 1,
		Categories: []models.Category{
			{
				ID:   "coding",
				Name: "Coding",
				Prompts: []models.Prompt{
					models.NewPrompt("Code Review",
						"Review this code for correctness, performance, and readability. Suggest specific improvements with code examples.",
						"review", "quality"),
					models.NewPrompt("Bug Report",
						"Analyze this bug. Describe the root cause, the expected vs actual behavior, and suggest a fix with code.",
						"debug", "bug"),
					models.NewPrompt("Refactor",
						"Refactor this code to improve readability and maintainability. Explain the changes you made and why.",
						"refactor", "clean"),
				},
			},
			{
				ID:   "writing",
				Name: "Writing",
				Prompts: []models.Prompt{
					models.NewPrompt("Summarize",
						"Summarize the following text in 3-5 concise bullet points, capturing the key ideas.",
						"summary"),
					models.NewPrompt("Improve Writing",
						"Improve the clarity, tone, and grammar of the following text while preserving the original meaning.",
						"edit", "grammar"),
				},
			},
			{
				ID:   "analysis",
				Name: "Analysis",
				Prompts: []models.Prompt{
					models.NewPrompt("Pros and Cons",
						"List the pros and cons of the following approach. Be specific and consider edge cases.",
						"analysis", "decision"),
				},
			},
		},
	}
}
