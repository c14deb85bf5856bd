package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/api/metrics"
	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Recorder writes accepted fixes to the track-point audit trail off the
// tracking loop's critical path. Points are sharded to a fixed set of workers
// by run id, so each run's trail stays in arrival order.
type Recorder struct {
	workers []chan domain.TrackPoint
	repo    ports.TrackRepository
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, repo ports.TrackRepository, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan domain.TrackPoint, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.TrackPoint, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues a point for its run's worker. When the worker's buffer is
// full the point is dropped rather than stalling the tracking session; the
// audit trail is best-effort.
func (r *Recorder) Record(point domain.TrackPoint) {
	idx := r.shardIndex(point.RunID)
	select {
	case r.workers[idx] <- point:
		metrics.TrackQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
	default:
		r.log.Warn().Str("run_id", point.RunID).Int("worker_id", idx).Msg("track queue full, dropping point")
	}
}

// shardIndex maps a run id deterministically to a worker index.
func (r *Recorder) shardIndex(runID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(runID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Recorder) runWorker(ctx context.Context, id int, ch <-chan domain.TrackPoint) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case point, ok := <-ch:
			if !ok {
				return
			}
			metrics.TrackQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := r.repo.InsertPoint(ctx, &point); err != nil {
				r.log.Error().Err(err).
					Str("run_id", point.RunID).
					Int("worker_id", id).
					Msg("track point insert failed")
			}
		}
	}
}
