// Package clipboard abstracts the system clipboard behind a token-based
// primitive. Every write by any process bumps an opaque change token;
// comparing tokens is the only reliable way to detect foreign writes,
// since identical text re-copied still counts as a change.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Snapshot is the clipboard state observed at a point in time: the text
// content and the change token current when it was read.
type Snapshot struct {
	Text  string
	Token uint64
}

// Clipboard is the minimal surface the orchestrators need. Write must
// advance the change token by exactly one step, so a caller can tell its
// own write apart from a foreign one by comparing token deltas.
type Clipboard interface {
	Read() (Snapshot, error)
	Write(text string) error
}

// ClipboardError reports that no clipboard utility is available.
type ClipboardError struct {
	OS      string
	Message string
}

func (e *ClipboardError) Error() string {
	return e.Message
}

// NewClipboardError creates a ClipboardError with installation instructions
func NewClipboardError() *ClipboardError {
	var msg string
	switch runtime.GOOS {
	case "linux":
		msg = "no clipboard utility found. Install one of:\n" +
			"  • Ubuntu/Debian: sudo apt install xclip\n" +
			"  • Fedora/RHEL: sudo dnf install xclip\n" +
			"  • Arch: sudo pacman -S xclip\n" +
			"  • For Wayland: install wl-clipboard"
	case "darwin":
		msg = "pbcopy/pbpaste not available (this should not happen on macOS)"
	case "windows":
		msg = "clip command not available (this should not happen on Windows)"
	default:
		msg = fmt.Sprintf("clipboard not supported on %s", runtime.GOOS)
	}

	return &ClipboardError{
		OS:      runtime.GOOS,
		Message: msg,
	}
}

// System is the real clipboard, reached through the platform's command
// line utilities (pbcopy/pbpaste, xclip, xsel, wl-clipboard, clip).
//
// None of these tools expose the OS change counter, so System keeps an
// approximation: the token is bumped on every own write and on every
// read that observes content different from the last observation. A
// foreign process re-copying identical text is the one case this cannot
// see; the orchestrators degrade gracefully when that happens.
type System struct {
	mu       sync.Mutex
	token    uint64
	lastText string
	primed   bool
}

// NewSystem returns a clipboard backed by the platform utilities.
func NewSystem() *System {
	return &System{}
}

// Read returns the current clipboard content and change token.
func (s *System) Read() (Snapshot, error) {
	text, err := readSystem()
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.primed || text != s.lastText {
		s.token++
		s.lastText = text
		s.primed = true
	}
	return Snapshot{Text: text, Token: s.token}, nil
}

// Write replaces the clipboard content and advances the token by one.
func (s *System) Write(text string) error {
	if err := writeSystem(text); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.lastText = text
	s.primed = true
	return nil
}

func writeSystem(text string) error {
	switch runtime.GOOS {
	case "darwin":
		return runWithStdin("pbcopy", nil, text)
	case "linux":
		return writeLinux(text)
	case "windows":
		return runWithStdin("cmd", []string{"/c", "clip"}, text)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func readSystem() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return runForOutput("pbpaste", nil)
	case "linux":
		return readLinux()
	case "windows":
		out, err := runForOutput("powershell", []string{"-noprofile", "-command", "Get-Clipboard -Raw"})
		// Get-Clipboard appends a trailing newline
		return strings.TrimSuffix(strings.TrimSuffix(out, "\n"), "\r"), err
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func writeLinux(text string) error {
	var lastErr error

	if isCommandAvailable("xclip") {
		if err := runWithStdin("xclip", []string{"-selection", "clipboard"}, text); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("xclip failed: %w", err)
		}
	}

	if isCommandAvailable("xsel") {
		if err := runWithStdin("xsel", []string{"--clipboard", "--input"}, text); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("xsel failed: %w", err)
		}
	}

	if isCommandAvailable("wl-copy") {
		if err := runWithStdin("wl-copy", nil, text); err == nil {
			return nil
		} else {
			lastErr = fmt.Errorf("wl-copy failed: %w", err)
		}
	}

	if lastErr != nil {
		return fmt.Errorf("clipboard utilities available but failed: %w", lastErr)
	}

	return NewClipboardError()
}

func readLinux() (string, error) {
	var lastErr error

	if isCommandAvailable("xclip") {
		if out, err := runForOutput("xclip", []string{"-selection", "clipboard", "-o"}); err == nil {
			return out, nil
		} else {
			lastErr = fmt.Errorf("xclip failed: %w", err)
		}
	}

	if isCommandAvailable("xsel") {
		if out, err := runForOutput("xsel", []string{"--clipboard", "--output"}); err == nil {
			return out, nil
		} else {
			lastErr = fmt.Errorf("xsel failed: %w", err)
		}
	}

	if isCommandAvailable("wl-paste") {
		if out, err := runForOutput("wl-paste", []string{"--no-newline"}); err == nil {
			return out, nil
		} else {
			lastErr = fmt.Errorf("wl-paste failed: %w", err)
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("clipboard utilities available but failed: %w", lastErr)
	}

	return "", NewClipboardError()
}

func runWithStdin(name string, args []string, input string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(input)
	return cmd.Run()
}

func runForOutput(name string, args []string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// isCommandAvailable checks if a command is available in PATH
func isCommandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// IsAvailable reports whether clipboard functionality is usable on this
// platform.
func IsAvailable() bool {
	switch runtime.GOOS {
	case "darwin":
		return isCommandAvailable("pbcopy") && isCommandAvailable("pbpaste")
	case "linux":
		return isCommandAvailable("xclip") || isCommandAvailable("xsel") ||
			(isCommandAvailable("wl-copy") && isCommandAvailable("wl-paste"))
	case "windows":
		return true
	default:
		return false
	}
}

// Memory is an in-process clipboard with exact token semantics: every
// write bumps the token, including writes of identical text. It backs
// headless runs where no clipboard utility exists, and tests.
type Memory struct {
	mu    sync.Mutex
	text  string
	token uint64
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the current content and token.
func (m *Memory) Read() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Text: m.text, Token: m.token}, nil
}

// Write replaces the content and advances the token by one.
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.token++
	return nil
}
