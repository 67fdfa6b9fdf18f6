package llm

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/heart-companion/internal/mood"
)

var (
	ErrQueueFull = errors.New("llm: request queue full")
	ErrClosed    = errors.New("llm: dispatcher shut down")
)

// Generator produces a mood reply for a prompt. *Client implements it.
type Generator interface {
	Mood(ctx context.Context, prompt string) (mood.Payload, error)
}

// Request is one queued model call. Seq is assigned by Submit.
type Request struct {
	Seq         uint64
	Prompt      string
	Interaction Interaction
	// HistoryEntry is what the user side of this exchange is remembered as.
	HistoryEntry string
}

// Result is the outcome of one Request: either Payload or Err is set.
type Result struct {
	Request Request
	Payload mood.Payload
	Err     error
}

// Dispatcher runs model requests off the UI goroutine on a fixed pool of
// workers and hands results back over a bounded channel.
type Dispatcher struct {
	gen     Generator
	queue   chan Request
	results chan Result

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	mu     sync.Mutex
	seq    uint64
	closed bool

	discarded atomic.Int64
}

func NewDispatcher(gen Generator, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	base, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(base)
	group.SetLimit(workers)

	d := &Dispatcher{
		gen:     gen,
		queue:   make(chan Request, queueSize),
		results: make(chan Result, queueSize+workers),
		group:   group,
		ctx:     ctx,
		cancel:  cancel,
		stop:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		group.Go(d.worker)
	}
	return d
}

// Submit queues req without blocking and returns its sequence number.
func (d *Dispatcher) Submit(req Request) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	req.Seq = d.seq + 1
	select {
	case d.queue <- req:
		d.seq = req.Seq
		return req.Seq, nil
	default:
		return 0, ErrQueueFull
	}
}

// Results delivers finished requests. It is never closed.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

func (d *Dispatcher) worker() error {
	for {
		select {
		case <-d.stop:
			return nil
		case req := <-d.queue:
			select {
			case <-d.stop:
				d.discarded.Add(1)
				return nil
			default:
			}
			d.run(req)
		}
	}
}

func (d *Dispatcher) run(req Request) {
	start := time.Now()
	payload, err := d.gen.Mood(d.ctx, req.Prompt)
	if err != nil {
		log.Printf("[LLM] Request #%d (%s) failed after %s: %v", req.Seq, req.Interaction, time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("[LLM] Request #%d (%s) answered in %s", req.Seq, req.Interaction, time.Since(start).Round(time.Millisecond))
	}

	select {
	case d.results <- Result{Request: req, Payload: payload, Err: err}:
	case <-d.ctx.Done():
	}
}

// Shutdown stops accepting requests, discards queued ones that have not
// started and waits up to grace for running ones. It reports whether every
// running request finished in time; stragglers are cancelled.
func (d *Dispatcher) Shutdown(grace time.Duration) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return true
	}
	d.closed = true
	close(d.stop)
	d.mu.Unlock()

	for drained := false; !drained; {
		select {
		case <-d.queue:
			d.discarded.Add(1)
		default:
			drained = true
		}
	}
	if n := d.discarded.Load(); n > 0 {
		log.Printf("[LLM] Discarded %d pending requests", n)
	}

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	defer d.cancel()
	select {
	case <-done:
		return true
	case <-time.After(grace):
		log.Printf("[LLM] Warning: requests still running after %s", grace)
		return false
	}
}
