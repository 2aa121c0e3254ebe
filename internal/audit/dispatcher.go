package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards events to a sink from a single background goroutine.
// A nil *Dispatcher is valid and discards everything.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	queue   chan Event
	stop    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

// NewDispatcher returns nil when auditing is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:   cfg,
		sink:  sink,
		queue: make(chan Event, cfg.BufferSize),
		stop:  make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(context.Background(), ev)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case ev := <-d.queue:
			d.sink.Emit(context.Background(), ev)
		default:
			return
		}
	}
}

// Emit enqueues ev. With DropIfFull it never blocks; otherwise it waits for
// buffer space, ctx cancellation, or Close.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- ev:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- ev:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close stops accepting events and flushes what is already buffered.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
