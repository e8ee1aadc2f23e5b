package scheduler

import (
	"time"
)

type state int

const (
	stateArmed state = iota
	stateFiring
	stateCancelled
)

// entry is one subscriber's timer. index is its position in the queue,
// -1 while it is not queued.
type entry struct {
	endpoint  string
	next      time.Time
	state     state
	cancelled bool // set while firing; the entry is dropped on completion
	index     int
}

// fireQueue is a min-heap of entries ordered by next fire time.
// It implements heap.Interface.
type fireQueue []*entry

func (q fireQueue) Len() int { return len(q) }

func (q fireQueue) Less(i, j int) bool {
	if q[i].next.Equal(q[j].next) {
		return q[i].endpoint < q[j].endpoint
	}
	return q[i].next.Before(q[j].next)
}

func (q fireQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *fireQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *fireQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}
