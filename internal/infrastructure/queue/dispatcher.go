package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lms-g2/lms-api/internal/core/ports"
	"github.com/lms-g2/lms-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrDispatcherStopped is returned by Schedule once Stop has been called.
var ErrDispatcherStopped = errors.New("cleanup dispatcher stopped")

// Dispatcher routes cleanup jobs to a fixed set of workers using consistent
// hashing on the resource id, so jobs for one course or student run in
// submission order.
type Dispatcher struct {
	workers []chan ports.CleanupJob
	service ports.CleanupService
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	// jobCtx is handed to Process. It is only cancelled when Stop runs out
	// of time, so jobs already queued are drained on a normal shutdown.
	jobCtx    context.Context
	cancelJob context.CancelFunc
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.CleanupService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	jobCtx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		workers:   make([]chan ports.CleanupJob, numWorkers),
		service:   service,
		log:       log,
		jobCtx:    jobCtx,
		cancelJob: cancel,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CleanupJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. They run until Stop closes their
// queues and every queued job has been processed.
func (d *Dispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Stop refuses further jobs and waits for the workers to drain what is
// already queued. If ctx expires first, in-flight jobs are cancelled and
// ctx.Err() is returned once the workers have exited.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelJob()
		return nil
	case <-ctx.Done():
		d.cancelJob()
		<-done
		return ctx.Err()
	}
}

// Schedule sends a job to the worker responsible for its id. The call blocks
// only when that worker's buffer is full.
func (d *Dispatcher) Schedule(job ports.CleanupJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	idx := d.shardIndex(job.ID)
	d.workers[idx] <- job
	metrics.CleanupQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// shardIndex maps an id deterministically to a worker index.
func (d *Dispatcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan ports.CleanupJob) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for job := range ch {
		metrics.CleanupQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		if err := d.service.Process(d.jobCtx, job); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(job.Kind)).
				Str("id", job.ID).
				Int("worker_id", id).
				Msg("enrollment cleanup failed")
		}
	}
}
