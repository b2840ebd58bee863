package collision

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide2d/geom"
)

// ErrBroadPhaseUnavailable is returned when the spatial index cannot answer
// within its deadline. Callers skip collision resolution for the tick.
var ErrBroadPhaseUnavailable = errors.New("collision: broad phase unavailable")

// DefaultWorkerTimeout bounds every round trip to a Worker.
const DefaultWorkerTimeout = 250 * time.Millisecond

// BroadPhase answers conservative "might overlap" queries. RebuildIndex must
// return before any Candidates call of the same tick.
type BroadPhase interface {
	RebuildIndex(ctx context.Context, shapes []*geom.Shape) error
	Candidates(ctx context.Context, bb cp.BB) ([]int, error)
}

type workerRequest struct {
	rebuild bool
	shapes  []*geom.Shape
	bb      cp.BB
	reply   chan workerReply
}

type workerReply struct {
	ids   []int
	ready bool
}

// Worker owns a Grid on its own goroutine. Calls block until the worker
// answers, the timeout elapses or ctx is done; replies that arrive after the
// caller gave up are dropped.
type Worker struct {
	Timeout time.Duration

	requests chan workerRequest
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup

	// before runs ahead of each request on the worker goroutine.
	before func()
}

func NewWorker(cellSize float64, timeout time.Duration) *Worker {
	return newWorker(NewGrid(cellSize), timeout, nil)
}

func newWorker(g *Grid, timeout time.Duration, before func()) *Worker {
	if timeout <= 0 {
		timeout = DefaultWorkerTimeout
	}
	w := &Worker{
		Timeout:  timeout,
		requests: make(chan workerRequest),
		done:     make(chan struct{}),
		before:   before,
	}
	w.wg.Add(1)
	go w.run(g)
	return w
}

func (w *Worker) run(g *Grid) {
	defer w.wg.Done()
	for {
		select {
		case req := <-w.requests:
			if w.before != nil {
				w.before()
			}
			if req.rebuild {
				g.Rebuild(req.shapes)
				req.reply <- workerReply{ready: true}
				continue
			}
			req.reply <- workerReply{ids: g.Query(req.bb), ready: g.Ready()}
		case <-w.done:
			return
		}
	}
}

// Close stops the worker goroutine and waits for it to exit.
func (w *Worker) Close() error {
	if w == nil {
		return nil
	}
	w.once.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
	return nil
}

// RebuildIndex sends a detached copy of every bounding box to the worker and
// waits for its acknowledgement.
func (w *Worker) RebuildIndex(ctx context.Context, shapes []*geom.Shape) error {
	boxes := make([]*geom.Shape, 0, len(shapes))
	for _, s := range shapes {
		if s == nil {
			continue
		}
		boxes = append(boxes, &geom.Shape{ID: s.ID, BB: s.BB})
	}
	_, err := w.call(ctx, workerRequest{rebuild: true, shapes: boxes})
	return err
}

func (w *Worker) Candidates(ctx context.Context, bb cp.BB) ([]int, error) {
	r, err := w.call(ctx, workerRequest{bb: bb})
	if err != nil {
		return nil, err
	}
	if !r.ready {
		return nil, ErrBroadPhaseUnavailable
	}
	return r.ids, nil
}

func (w *Worker) call(ctx context.Context, req workerRequest) (workerReply, error) {
	if w == nil {
		return workerReply{}, ErrBroadPhaseUnavailable
	}
	req.reply = make(chan workerReply, 1)

	timer := time.NewTimer(w.Timeout)
	defer timer.Stop()

	select {
	case w.requests <- req:
	case <-timer.C:
		return workerReply{}, ErrBroadPhaseUnavailable
	case <-w.done:
		return workerReply{}, ErrBroadPhaseUnavailable
	case <-ctx.Done():
		return workerReply{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r, nil
	case <-timer.C:
		return workerReply{}, ErrBroadPhaseUnavailable
	case <-w.done:
		return workerReply{}, ErrBroadPhaseUnavailable
	case <-ctx.Done():
		return workerReply{}, ctx.Err()
	}
}
