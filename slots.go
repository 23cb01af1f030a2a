package clipseq

// Slots is one of the slot-indexed sequences of a Clip. A sequence shorter
// than the clip's pattern list behaves as if padded with its last element.
type Slots[T any] []T

// Get returns the value for slot index; indices past the end get the last
// value. ok is false only if the sequence is empty or index is negative.
func (s Slots[T]) Get(index int) (v T, ok bool) {
	if index < 0 || len(s) == 0 {
		return v, false
	}
	return s[min(index, len(s)-1)], true
}

// GetOr is Get with a default for empty sequences.
func (s Slots[T]) GetOr(index int, def T) T {
	if v, ok := s.Get(index); ok {
		return v
	}
	return def
}
