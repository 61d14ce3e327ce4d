package engine

import "sync/atomic"

// Sequence is a monotonic counter used to break ties between actions
// scheduled for the same frame.
//
// Every scheduled action takes a strictly increasing number from the
// sequence, so identical schedule calls made in the same order always
// produce the same execution order.
type Sequence struct {
	n atomic.Int64
}

// NewSequence creates a sequence starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments the sequence and returns the new value.
func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}
