package sched

import "container/heap"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// runQueue is the FIFO of runnable threads. Threads that stopped being
// runnable while queued are skipped when popped.
type runQueue struct {
	threads []*Thread
}

func newRunQueue() runQueue {
	return runQueue{threads: make([]*Thread, 0, defaultQueueCap)}
}

func (q *runQueue) push(t *Thread) {
	if t.queued {
		return
	}
	t.queued = true
	q.threads = append(q.threads, t)
}

// pop returns the first runnable thread, or nil.
func (q *runQueue) pop() *Thread {
	for len(q.threads) > 0 {
		t := q.threads[0]
		q.threads[0] = nil
		q.threads = q.threads[1:]
		t.queued = false
		if t.runnable() {
			q.maybeCompact()
			return t
		}
	}
	q.maybeCompact()
	return nil
}

func (q *runQueue) len() int {
	return len(q.threads)
}

func (q *runQueue) maybeCompact() {
	n := len(q.threads)
	c := cap(q.threads)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.threads = make([]*Thread, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)
	newSlice := make([]*Thread, n, newCap)
	copy(newSlice, q.threads)
	q.threads = newSlice
}

// sleepHeap orders sleeping threads by deadline. It implements
// heap.Interface.
type sleepHeap []*Thread

func (h sleepHeap) Len() int           { return len(h) }
func (h sleepHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h sleepHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *sleepHeap) Push(x any) {
	n := len(*h)
	item := x.(*Thread)
	item.index = n
	*h = append(*h, item)
}

func (h *sleepHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *sleepHeap) Peek() *Thread {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// remove takes t out of the heap if it is in it.
func (h *sleepHeap) remove(t *Thread) {
	if t.index < 0 || t.index >= len(*h) || (*h)[t.index] != t {
		return
	}
	heap.Remove(h, t.index)
}
