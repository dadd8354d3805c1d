package eventlog

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"
)

// ErrQueueClosed is returned by Publish once the queue has been closed.
var ErrQueueClosed = errors.New("event queue closed")

// Default ring geometry
const (
	DefaultCapacity = 4
	DefaultSlotSize = 256
)

// Queue is a bounded ring buffer of fixed-size message slots shared by any
// number of publishers and exactly one consumer. All slot memory is allocated
// up front; publishing never allocates.
type Queue struct {
	mu             sync.Mutex
	spaceAvailable *sync.Cond
	dataAvailable  *sync.Cond

	slots   [][]byte
	lengths []int
	nextIn  int
	nextOut int
	count   int
	closed  bool

	published uint64
	dropped   uint64
}

// NewQueue creates a queue holding up to capacity messages of at most
// slotSize bytes each. Non-positive arguments fall back to the defaults.
func NewQueue(capacity, slotSize int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if slotSize <= 0 {
		slotSize = DefaultSlotSize
	}

	backing := make([]byte, capacity*slotSize)
	slots := make([][]byte, capacity)
	for i := range slots {
		slots[i] = backing[i*slotSize : (i+1)*slotSize : (i+1)*slotSize]
	}

	q := &Queue{
		slots:   slots,
		lengths: make([]int, capacity),
	}
	q.spaceAvailable = sync.NewCond(&q.mu)
	q.dataAvailable = sync.NewCond(&q.mu)
	return q
}

// Publish copies msg into the next free slot, blocking while the ring is
// full. Messages longer than the slot size are truncated on a rune boundary.
func (q *Queue) Publish(msg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == len(q.slots) && !q.closed {
		q.spaceAvailable.Wait()
	}
	if q.closed {
		q.dropped++
		return ErrQueueClosed
	}

	slot := q.slots[q.nextIn]
	n := len(msg)
	if n > len(slot) {
		// Cut at a rune boundary so the slot stays valid UTF-8
		n = len(slot)
		for n > 0 && !utf8.RuneStart(msg[n]) {
			n--
		}
	}
	q.lengths[q.nextIn] = copy(slot, msg[:n])
	q.nextIn = (q.nextIn + 1) % len(q.slots)
	q.count++
	q.published++

	q.dataAvailable.Signal()
	return nil
}

// Publishf formats according to a format specifier and publishes the result.
func (q *Queue) Publishf(format string, args ...interface{}) error {
	return q.Publish(fmt.Sprintf(format, args...))
}

// Consume copies the oldest message into dst and returns the filled prefix.
// It blocks while the queue is empty; ok is false once the queue is closed
// and fully drained. dst is grown to the slot size if it is too small.
func (q *Queue) Consume(dst []byte) (msg []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.dataAvailable.Wait()
	}
	if q.count == 0 {
		return dst[:0], false
	}

	n := q.lengths[q.nextOut]
	if cap(dst) < n {
		dst = make([]byte, 0, len(q.slots[q.nextOut]))
	}
	dst = append(dst[:0], q.slots[q.nextOut][:n]...)
	q.lengths[q.nextOut] = 0
	q.nextOut = (q.nextOut + 1) % len(q.slots)
	q.count--

	q.spaceAvailable.Signal()
	return dst, true
}

// Close stops accepting messages. Messages already queued are still
// delivered to the consumer. Blocked publishers are released with
// ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.dataAvailable.Broadcast()
	q.spaceAvailable.Broadcast()
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the number of slots in the ring.
func (q *Queue) Cap() int {
	return len(q.slots)
}

// SlotSize returns the maximum message length in bytes.
func (q *Queue) SlotSize() int {
	return cap(q.slots[0])
}

// Stats returns the number of published and dropped messages.
func (q *Queue) Stats() (published, dropped uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.published, q.dropped
}
