package engine

import (
	"container/heap"

	"github.com/vsariola/clipseq"
)

// queued is an event waiting in a track queue, tagged with the clip run that
// produced it.
type queued struct {
	at         clipseq.Tick
	kind       clipseq.EventKind
	pitch      int
	velocity   int
	controller int
	value      int
	owner      *clipRun
	seq        uint64
}

// eventQueue is a min-heap of events ordered by before.
type eventQueue []queued

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool { return before(&q[i], &q[j]) }

// before orders events by tick, then releases before controller changes
// before new notes, then by the activation order of the producing clips, then
// by insertion. Clips on different tracks never share an activation order,
// so the order is total across tracks as well.
func before(a, b *queued) bool {
	if a.at != b.at {
		return a.at < b.at
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.owner.order != b.owner.order {
		return a.owner.order < b.owner.order
	}
	return a.seq < b.seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

func (q *eventQueue) push(e queued) { heap.Push(q, e) }

// peekDue returns the first event if it is due at or before t.
func (q eventQueue) peekDue(t clipseq.Tick) (*queued, bool) {
	if len(q) == 0 || q[0].at > t {
		return nil, false
	}
	return &q[0], true
}

func (q *eventQueue) pop() queued { return heap.Pop(q).(queued) }

// removeIf drops every event for which f is true.
func (q *eventQueue) removeIf(f func(e *queued) bool) {
	kept := (*q)[:0]
	for i := range *q {
		if !f(&(*q)[i]) {
			kept = append(kept, (*q)[i])
		}
	}
	clear((*q)[len(kept):])
	*q = kept
	heap.Init(q)
}
