package services

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	defaultWorkerCount = 2
	defaultQueueSize   = 256
)

// MatchWorker drains detection jobs off a bounded queue. Detection is
// the secondary consequence of a swipe: it runs after the swipe call
// has already returned, retries transiently with the detector's
// budget, and its failures end in the log, never in the swipe
// caller's error.
type MatchWorker struct {
	Detector *MutualMatchDetector
	Log      *zap.Logger

	jobs chan DetectionJob
	wg   sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	once    sync.Once
}

// NewMatchWorker builds a worker pool over the detector. workers and
// queueSize fall back to small defaults when non-positive.
func NewMatchWorker(detector *MutualMatchDetector, workers, queueSize int, log *zap.Logger) *MatchWorker {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	w := &MatchWorker{
		Detector: detector,
		Log:      log,
		jobs:     make(chan DetectionJob, queueSize),
	}

	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go w.run()
	}
	return w
}

// Enqueue hands a job to the pool. Returns false when the queue is
// full or the worker is stopped; the caller logs and moves on, since
// the swipe itself already succeeded. The read lock holds the queue
// open across the send, so a concurrent Stop cannot close it under a
// sender.
func (w *MatchWorker) Enqueue(job DetectionJob) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return false
	}

	select {
	case w.jobs <- job:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs to finish. The
// write lock waits out any sender before the channel closes.
func (w *MatchWorker) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.jobs)
		w.mu.Unlock()
	})
	w.wg.Wait()
}

func (w *MatchWorker) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		err := w.Detector.CheckAndCreateWithRetry(context.Background(), job.ActorID, job.TargetID, job.TargetKind)
		if err != nil && w.Log != nil {
			w.Log.Error("match detection failed",
				zap.String("actorId", job.ActorID),
				zap.String("targetId", job.TargetID),
				zap.String("targetKind", string(job.TargetKind)),
				zap.Error(err))
		}
	}
}
