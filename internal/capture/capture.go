// Package capture obtains the text currently selected in the foreground
// application by triggering an OS copy action and watching the clipboard
// for the result.
package capture

import (
	"fmt"
	"time"

	"github.com/kartikmehra/flowprompt/internal/clipboard"
)

// DefaultDelay is how long to wait for the OS copy round-trip after the
// trigger fires. Tunable policy: long enough to outlast the copy, short
// enough to keep the launcher feeling responsive.
const DefaultDelay = 150 * time.Millisecond

// Capturer drives one copy-then-read sequence against the clipboard
// guard. No state survives between calls; every Capture starts fresh.
type Capturer struct {
	guard *clipboard.Guard
	delay time.Duration
	after func(time.Duration) <-chan time.Time
}

// New creates a capturer with the given wait. A non-positive delay falls
// back to DefaultDelay.
func New(guard *clipboard.Guard, delay time.Duration) *Capturer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Capturer{
		guard: guard,
		delay: delay,
		after: time.After,
	}
}

// Capture snapshots the clipboard, invokes trigger (the collaborator
// that asks the OS to copy the current selection), waits out the copy
// round-trip, and resolves:
//
//   - the clipboard changed: the new content is the selection;
//   - nothing changed but the clipboard already held text: that text is
//     returned as a fallback (the user may have copied manually);
//   - otherwise "" — nothing to capture, which is not an error.
//
// Capture blocks for the configured delay; run it off the UI loop.
func (c *Capturer) Capture(trigger func()) (string, error) {
	before, err := c.guard.Snapshot()
	if err != nil {
		return "", fmt.Errorf("failed to snapshot clipboard: %w", err)
	}

	trigger()

	<-c.after(c.delay)

	now, err := c.guard.Snapshot()
	if err != nil {
		return "", fmt.Errorf("failed to re-read clipboard: %w", err)
	}

	if now.Token != before.Token && now.Text != "" {
		return now.Text, nil
	}
	if now.Text != "" {
		return now.Text, nil
	}
	return "", nil
}
