// Package dicetest provides deterministic dice sources for tests.
package dicetest

import (
	"fmt"
	"sync"
)

// Queue is a dice.Source that replays predetermined die faces in order.
type Queue struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewQueue returns a Queue that yields faces in order.
//
// Precondition: every face is >= 1.
func NewQueue(faces ...int) *Queue {
	return &Queue{faces: faces}
}

// Push appends more faces to the queue.
func (q *Queue) Push(faces ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.faces = append(q.faces, faces...)
}

// Remaining returns how many queued faces have not been consumed.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.faces) - q.next
}

// Intn returns the next queued face minus one, so the roller adds it back.
//
// Precondition: the queue is not exhausted and the face is <= n; panics otherwise.
func (q *Queue) Intn(n int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next >= len(q.faces) {
		panic("dicetest: Queue exhausted")
	}
	face := q.faces[q.next]
	q.next++
	if face < 1 || face > n {
		panic(fmt.Sprintf("dicetest: queued face %d out of range for d%d", face, n))
	}
	return face - 1
}
