package page

import "sync"

// FrameID identifies a requested frame callback. Zero is never issued.
type FrameID uint64

// FrameLoop runs callbacks before the next frame is presented.
type FrameLoop interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// ManualLoop is a FrameLoop whose frames are produced by calling Flush.
// It suits tests and batch rendering.
type ManualLoop struct {
	mu      sync.Mutex
	next    FrameID
	order   []FrameID
	pending map[FrameID]func()
}

var _ FrameLoop = (*ManualLoop)(nil)

// NewManualLoop creates an empty loop.
func NewManualLoop() *ManualLoop {
	return &ManualLoop{pending: make(map[FrameID]func())}
}

// RequestFrame queues fn for the next Flush.
func (l *ManualLoop) RequestFrame(fn func()) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.pending[l.next] = fn
	l.order = append(l.order, l.next)
	return l.next
}

// CancelFrame drops a queued callback. Unknown ids are ignored.
func (l *ManualLoop) CancelFrame(id FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, id)
}

// Pending returns the number of queued callbacks.
func (l *ManualLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Flush runs the callbacks queued so far in request order and returns how
// many ran. Callbacks requested while flushing wait for the next Flush.
func (l *ManualLoop) Flush() int {
	l.mu.Lock()
	order := l.order
	l.order = nil
	fns := make([]func(), 0, len(order))
	for _, id := range order {
		if fn, ok := l.pending[id]; ok {
			fns = append(fns, fn)
			delete(l.pending, id)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
