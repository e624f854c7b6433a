package capture

import (
	"testing"
	"time"

	"github.com/kartikmehra/flowprompt/internal/clipboard"
)

// immediate replaces the wall-clock wait so tests resolve synchronously.
func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newTestCapturer(mem *clipboard.Memory) *Capturer {
	c := New(clipboard.NewGuard(mem), DefaultDelay)
	c.after = immediate
	return c
}

func TestCaptureReturnsNewSelection(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("old contents"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	c := newTestCapturer(mem)

	// The trigger stands in for the OS copy action landing new text.
	got, err := c.Capture(func() {
		if err := mem.Write("selected text"); err != nil {
			t.Errorf("Write failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "selected text" {
		t.Errorf("expected captured selection, got %q", got)
	}
}

func TestCaptureFallsBackToExistingText(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("existing"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	c := newTestCapturer(mem)

	// Trigger is a no-op: the selection-copy produced no change.
	got, err := c.Capture(func() {})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "existing" {
		t.Errorf("expected pre-existing clipboard text, got %q", got)
	}
}

func TestCaptureReturnsEmptyWhenNothingToCapture(t *testing.T) {
	mem := clipboard.NewMemory()
	c := newTestCapturer(mem)

	got, err := c.Capture(func() {})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty string for nothing-to-capture, got %q", got)
	}
}

func TestCaptureIdenticalRecopyCountsAsChanged(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("same"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	c := newTestCapturer(mem)

	// Re-copying identical text bumps the token; it is still a capture.
	got, err := c.Capture(func() {
		if err := mem.Write("same"); err != nil {
			t.Errorf("Write failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "same" {
		t.Errorf("expected %q, got %q", "same", got)
	}
}
