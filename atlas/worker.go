package atlas

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/anthonynsimon/bild/clone"

	"github.com/gogpu/typewriter"
	"github.com/gogpu/typewriter/effect"
)

// MessageType tags worker protocol messages.
type MessageType string

// Worker protocol message types.
const (
	MsgBuildAtlas MessageType = "buildAtlas"
	MsgAtlasReady MessageType = "atlasReady"
	MsgAtlasError MessageType = "atlasError"
)

// Request asks a Worker to build one atlas.
type Request struct {
	Type       MessageType
	Key        Key
	Params     effect.Params
	Generation uint64
}

// Reply carries a built atlas, or the reason it could not be built.
// Bitmap is an independent copy owned by the receiver.
type Reply struct {
	Type         MessageType
	Key          Key
	Generation   uint64
	Bitmap       *image.RGBA
	RectDPByCode map[int]image.Rectangle
	CellWCSS     float64
	CellHCSS     float64
	CellWDrawDP  int
	CellHDrawDP  int
	OriginYCSS   float64
	SampleScale  float64
	Error        string
}

// Atlas rebuilds the atlas carried by a ready reply.
func (r Reply) Atlas() *Atlas {
	a := &Atlas{
		Key:         r.Key,
		Image:       r.Bitmap,
		CellWCSS:    r.CellWCSS,
		CellHCSS:    r.CellHCSS,
		CellWDrawDP: r.CellWDrawDP,
		CellHDrawDP: r.CellHDrawDP,
		OriginYCSS:  r.OriginYCSS,
		SampleScale: r.SampleScale,
	}
	for code, rect := range r.RectDPByCode {
		if code >= firstCode && code <= lastCode {
			a.rects[code-firstCode] = rect
		}
	}
	return a
}

// Worker builds atlases on background goroutines. It runs the same
// Builder as the synchronous Cache, so both produce identical pixels.
type Worker struct {
	builder  *Builder
	requests chan Request
	replies  chan Reply

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWorker starts n goroutines building with b.
func NewWorker(b *Builder, n int) *Worker {
	n = max(n, 1)
	w := &Worker{
		builder:  b,
		requests: make(chan Request, 4*n),
		replies:  make(chan Reply, 4*n),
		done:     make(chan struct{}),
	}
	w.wg.Add(n)
	for i := 0; i < n; i++ {
		go w.loop()
	}
	typewriter.LoggerFor("atlas").Info("worker started", "goroutines", n)
	return w
}

// Submit queues req. It blocks while the queue is full.
func (w *Worker) Submit(ctx context.Context, req Request) error {
	select {
	case <-w.done:
		return ErrWorkerClosed
	default:
	}
	select {
	case w.requests <- req:
		return nil
	case <-w.done:
		return ErrWorkerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Replies returns the reply channel. It is closed after Close once every
// running build has finished.
func (w *Worker) Replies() <-chan Reply {
	return w.replies
}

// Close stops the worker. Queued requests that have not started are
// dropped.
func (w *Worker) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		go func() {
			w.wg.Wait()
			close(w.replies)
		}()
	})
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			reply := w.handle(req)
			select {
			case w.replies <- reply:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Worker) handle(req Request) Reply {
	fail := func(err error) Reply {
		return Reply{Type: MsgAtlasError, Key: req.Key, Generation: req.Generation, Error: err.Error()}
	}
	if req.Type != MsgBuildAtlas {
		return fail(fmt.Errorf("atlas: unknown request type %q", req.Type))
	}
	if err := w.builder.Font().Probe(); err != nil {
		return fail(err)
	}
	a, err := w.builder.Build(req.Key, &req.Params)
	if err != nil {
		return fail(err)
	}
	return Reply{
		Type:         MsgAtlasReady,
		Key:          req.Key,
		Generation:   req.Generation,
		Bitmap:       clone.AsRGBA(a.Image),
		RectDPByCode: a.RectsByCode(),
		CellWCSS:     a.CellWCSS,
		CellHCSS:     a.CellHCSS,
		CellWDrawDP:  a.CellWDrawDP,
		CellHDrawDP:  a.CellHDrawDP,
		OriginYCSS:   a.OriginYCSS,
		SampleScale:  a.SampleScale,
	}
}

// AsyncCache is the non-blocking counterpart of Cache. A missing atlas is
// requested from a Worker and reported absent until its reply is
// delivered. Reset discards every atlas and ignores replies to requests
// made before it.
type AsyncCache struct {
	worker *Worker

	mu         sync.Mutex
	params     effect.Params
	generation uint64
	ready      map[Key]*Atlas
	pending    map[Key]bool
	failed     map[Key]string
}

// NewAsyncCache creates an asynchronous cache fed by w.
func NewAsyncCache(w *Worker, p effect.Params) *AsyncCache {
	return &AsyncCache{
		worker:  w,
		params:  p,
		ready:   make(map[Key]*Atlas),
		pending: make(map[Key]bool),
		failed:  make(map[Key]string),
	}
}

// Request returns the atlas if it has arrived. Otherwise it submits a
// build, unless one is already pending or has failed, and returns false.
func (c *AsyncCache) Request(ctx context.Context, ink color.RGBA, variant int, effects bool) (*Atlas, bool, error) {
	c.mu.Lock()
	key := NewKey(ink, variant, effects, &c.params)
	if a, ok := c.ready[key]; ok {
		c.mu.Unlock()
		return a, true, nil
	}
	if c.pending[key] {
		c.mu.Unlock()
		return nil, false, nil
	}
	if msg, ok := c.failed[key]; ok {
		c.mu.Unlock()
		return nil, false, fmt.Errorf("atlas: build of %s failed: %s", key, msg)
	}
	c.pending[key] = true
	req := Request{Type: MsgBuildAtlas, Key: key, Params: c.params, Generation: c.generation}
	c.mu.Unlock()

	if err := c.worker.Submit(ctx, req); err != nil {
		c.mu.Lock()
		if c.generation == req.Generation {
			delete(c.pending, key)
		}
		c.mu.Unlock()
		return nil, false, err
	}
	return nil, false, nil
}

// Generation returns the current generation.
func (c *AsyncCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Reset installs p, drops every atlas and makes replies to earlier
// requests stale.
func (c *AsyncCache) Reset(p effect.Params) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = p
	c.generation++
	clear(c.ready)
	clear(c.pending)
	clear(c.failed)
}

// Deliver applies a worker reply. It reports false for stale replies,
// which are dropped.
func (c *AsyncCache) Deliver(r Reply) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.Generation != c.generation {
		typewriter.LoggerFor("atlas").Debug("dropped stale reply",
			"generation", r.Generation, "current", c.generation)
		return false
	}
	delete(c.pending, r.Key)
	switch r.Type {
	case MsgAtlasReady:
		c.ready[r.Key] = r.Atlas()
	case MsgAtlasError:
		c.failed[r.Key] = r.Error
		typewriter.LoggerFor("atlas").Warn("worker build failed", "key", r.Key.String(), "error", r.Error)
	default:
		return false
	}
	return true
}

// Pump delivers replies until ctx is done or the worker is closed. The
// optional onDeliver callback runs after each accepted reply.
func (c *AsyncCache) Pump(ctx context.Context, onDeliver func(Reply)) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-c.worker.Replies():
			if !ok {
				return
			}
			if c.Deliver(r) && onDeliver != nil {
				onDeliver(r)
			}
		}
	}
}
