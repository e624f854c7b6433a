package paste

import (
	"testing"
	"time"

	"github.com/kartikmehra/flowprompt/internal/clipboard"
)

// manualScheduler collects restore continuations so tests fire them
// deterministically instead of waiting out the real delay.
type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) schedule(_ time.Duration, fn func()) {
	m.pending = append(m.pending, fn)
}

func (m *manualScheduler) fire(t *testing.T) {
	t.Helper()
	if len(m.pending) == 0 {
		t.Fatal("no scheduled restore to fire")
	}
	fn := m.pending[0]
	m.pending = m.pending[1:]
	fn()
}

func newTestPaster(mem *clipboard.Memory) (*Paster, *manualScheduler) {
	sched := &manualScheduler{}
	p := New(clipboard.NewGuard(mem), DefaultDelay)
	p.schedule = sched.schedule
	return p, sched
}

func TestPasteWritesAndRestores(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("A"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	p, sched := newTestPaster(mem)

	simulated := false
	if err := p.Paste("B", func() { simulated = true }); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if !simulated {
		t.Error("simulate callback was not invoked")
	}

	// Before the restore fires the pasted text is on the clipboard.
	cur, _ := mem.Read()
	if cur.Text != "B" {
		t.Errorf("expected pasted text on clipboard, got %q", cur.Text)
	}

	sched.fire(t)

	cur, _ = mem.Read()
	if cur.Text != "A" {
		t.Errorf("expected previous clipboard restored, got %q", cur.Text)
	}
}

func TestPasteSkipsRestoreOnForeignWrite(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("A"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	p, sched := newTestPaster(mem)

	if err := p.Paste("B", func() {}); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}

	// External actor writes during the restore window.
	if err := mem.Write("C"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	sched.fire(t)

	cur, _ := mem.Read()
	if cur.Text != "C" {
		t.Errorf("foreign write must not be clobbered, got %q", cur.Text)
	}
}

func TestNewerPasteSupersedesPendingRestore(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("A"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	p, sched := newTestPaster(mem)

	if err := p.Paste("B", func() {}); err != nil {
		t.Fatalf("first Paste failed: %v", err)
	}
	if err := p.Paste("C", func() {}); err != nil {
		t.Fatalf("second Paste failed: %v", err)
	}

	// The stale restore from the first call no-ops: the second call's
	// write moved the token past its expected delta.
	sched.fire(t)
	cur, _ := mem.Read()
	if cur.Text != "C" {
		t.Errorf("stale restore corrupted newer clipboard state: got %q", cur.Text)
	}

	// The second call's restore brings back what it saw, which was "B".
	sched.fire(t)
	cur, _ = mem.Read()
	if cur.Text != "B" {
		t.Errorf("expected second restore to write back %q, got %q", "B", cur.Text)
	}
}

func TestWaitHoldsCallerUntilRestoreResolves(t *testing.T) {
	mem := clipboard.NewMemory()
	if err := mem.Write("previous contents"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Real scheduler with a short delay: the point is that Wait blocks
	// until the detached restore has actually run, so a caller that
	// exits right after a paste does not strand the pending timer.
	p := New(clipboard.NewGuard(mem), time.Millisecond)

	if err := p.Paste("pasted prompt", func() {}); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}

	p.Wait()

	cur, _ := mem.Read()
	if cur.Text != "previous contents" {
		t.Errorf("restore had not run when Wait returned: clipboard %q", cur.Text)
	}
}

func TestWaitReturnsWithNoPendingRestore(t *testing.T) {
	p := New(clipboard.NewGuard(clipboard.NewMemory()), time.Millisecond)
	p.Wait()

	if err := p.Copy("copied"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	p.Wait()
}

func TestCopyDoesNotRestore(t *testing.T) {
	mem := clipboard.NewMemory()
	p, sched := newTestPaster(mem)

	if err := p.Copy("plain copy"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	if len(sched.pending) != 0 {
		t.Error("Copy must not schedule a restore")
	}

	cur, _ := mem.Read()
	if cur.Text != "plain copy" {
		t.Errorf("expected copied text, got %q", cur.Text)
	}
}
