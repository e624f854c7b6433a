package clipboard

// Guard layers snapshot/restore semantics over a Clipboard so the capture
// and paste orchestrators share one implementation of the race handling.
// Restoration is conditional: a prior state is written back only when the
// token delta proves nothing else touched the clipboard in the interim.
type Guard struct {
	cb Clipboard
}

// NewGuard wraps a clipboard in a snapshot guard.
func NewGuard(cb Clipboard) *Guard {
	return &Guard{cb: cb}
}

// Snapshot reads the current content and change token.
func (g *Guard) Snapshot() (Snapshot, error) {
	return g.cb.Read()
}

// ChangedSince reports whether the clipboard token has moved past the
// given one. Content comparison is not enough here: identical text
// re-copied still bumps the token and must count as changed.
func (g *Guard) ChangedSince(token uint64) (bool, error) {
	cur, err := g.cb.Read()
	if err != nil {
		return false, err
	}
	return cur.Token != token, nil
}

// Write replaces the clipboard content, advancing the token by exactly
// one step.
func (g *Guard) Write(text string) error {
	return g.cb.Write(text)
}

// Restore writes prev's content back only if the token has advanced by
// exactly expectedDelta since prev was taken — i.e. the only writes in
// between were the caller's own. On any foreign write the restore is
// skipped so foreign data is never clobbered. Returns whether the
// restore happened.
func (g *Guard) Restore(prev Snapshot, expectedDelta uint64) (bool, error) {
	cur, err := g.cb.Read()
	if err != nil {
		return false, err
	}
	if cur.Token != prev.Token+expectedDelta {
		return false, nil
	}
	if err := g.cb.Write(prev.Text); err != nil {
		return false, err
	}
	return true, nil
}
