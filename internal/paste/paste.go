// Package paste injects text into the foreground application: it parks
// the text on the clipboard, asks the OS to perform a paste keystroke,
// and restores the user's previous clipboard once the target app has had
// time to read the value.
package paste

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kartikmehra/flowprompt/internal/clipboard"
)

// DefaultDelay is how long the pasted value stays on the clipboard
// before restoration. Tunable policy: it must exceed the time the
// foreground app needs to read the value.
const DefaultDelay = 500 * time.Millisecond

// Paster drives one write-paste-restore sequence against the clipboard
// guard. The restore tail is detached: callers get control back right
// after the paste keystroke is issued. Callers that exit soon after a
// Paste must Wait first, or the pending restore dies with the process.
type Paster struct {
	guard    *clipboard.Guard
	delay    time.Duration
	schedule func(time.Duration, func())
	pending  sync.WaitGroup
}

// New creates a paster with the given restore delay. A non-positive
// delay falls back to DefaultDelay.
func New(guard *clipboard.Guard, delay time.Duration) *Paster {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Paster{
		guard: guard,
		delay: delay,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// Paste snapshots the clipboard, writes text (advancing the token by
// exactly one), invokes simulate (the collaborator that issues the OS
// paste keystroke), and schedules a conditional restore of the previous
// content after the delay.
//
// The restore is best-effort, not transactional: if anything else wrote
// to the clipboard during the delay, the token delta no longer matches
// and the restore silently skips — foreign data is never clobbered. A
// newer Paste call supersedes a pending restore the same way.
func (p *Paster) Paste(text string, simulate func()) error {
	prev, err := p.guard.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot clipboard: %w", err)
	}

	if err := p.guard.Write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	simulate()

	p.pending.Add(1)
	p.schedule(p.delay, func() {
		defer p.pending.Done()
		if _, err := p.guard.Restore(prev, 1); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to restore clipboard: %v\n", err)
		}
	})

	return nil
}

// Wait blocks until every scheduled restore has resolved. Short-lived
// callers (the headless paste command, a quitting launcher) must wait
// out the restore tail before exiting.
func (p *Paster) Wait() {
	p.pending.Wait()
}

// Copy writes text to the clipboard without simulating a paste keystroke
// and without restoration.
func (p *Paster) Copy(text string) error {
	if err := p.guard.Write(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
