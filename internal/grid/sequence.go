package grid

import "sync/atomic"

// Sequencer hands out monotonically increasing request tokens so a host can
// drop responses to fetches that a newer fetch has superseded.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new token. It becomes the only current token.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current reports whether token is the most recently issued one.
func (s *Sequencer) Current(token uint64) bool {
	return token != 0 && s.last.Load() == token
}
