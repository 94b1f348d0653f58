package tracer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
)

// The default number of rays dispatched to each worker per batch.
const DefaultBlockSize = 1024

// The Accelerator interface is implemented by structures that answer ray
// queries against a primitive set, such as a BVH or a plain primitive list.
type Accelerator interface {
	// Get the bounding box of all primitives.
	BoundingBox() scene.BBox

	// Returns true if the ray hits anything within its interval.
	Hit(*scene.Ray) bool

	// Find the nearest hit within the ray interval, shrinking the ray
	// MaxT and filling the intersection record when one is found.
	Intersect(*scene.Ray, *scene.Intersection) bool
}

type Options struct {
	// Number of tracing go-routines. Defaults to the number of CPUs.
	Workers int

	// Number of rays per worker and batch.
	BlockSize uint32

	// The scheduler for splitting batches into blocks. Defaults to the
	// perfect scheduler.
	Scheduler BlockScheduler
}

// A unit of work that is processed by a worker.
type BlockRequest struct {
	// Index of the first ray and number of rays in this block.
	Start uint32
	Count uint32

	// A channel to signal on block completion with the worker index.
	DoneChan chan<- int

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Worker statistics.
type WorkerStats struct {
	// The worker id.
	Id int

	// The size of the last processed block and the time for tracing it.
	BlockRays uint32
	BlockTime time.Duration

	// Totals for all processed blocks.
	Rays      uint64
	Hits      uint64
	TraceTime time.Duration
}

// Batch statistics.
type Stats struct {
	// Individual worker stats.
	Workers []WorkerStats

	// Number of traced rays and the number of rays that hit something.
	Rays uint64
	Hits uint64

	// Mean distance to the nearest hit over all rays that hit.
	MeanDistance float64

	// Total time for tracing the entire batch.
	TraceTime time.Duration
}

// Get the number of traced rays per second.
func (s *Stats) RaysPerSec() float64 {
	if s.TraceTime <= 0 {
		return 0
	}
	return float64(s.Rays) / s.TraceTime.Seconds()
}

type worker struct {
	id    int
	accel Accelerator
	rays  []scene.Ray

	// A channel for receiving block requests.
	blockReqChan chan BlockRequest

	stats WorkerStats

	// Sum of nearest hit distances for the processed blocks.
	distSum float64
}

// Process block requests until the request channel is closed.
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for blockReq := range w.blockReqChan {
		start := time.Now()
		hits, distSum, err := w.traceBlock(blockReq.Start, blockReq.Count)
		if err != nil {
			blockReq.ErrChan <- err
			continue
		}

		// Update stats
		w.stats.BlockRays = blockReq.Count
		w.stats.BlockTime = time.Since(start)
		w.stats.Rays += uint64(blockReq.Count)
		w.stats.Hits += hits
		w.stats.TraceTime += w.stats.BlockTime
		w.distSum += distSum

		blockReq.DoneChan <- w.id
	}
}

// Run the existence and nearest-hit queries for a block of rays. Each query
// works on a private copy of the input ray.
func (w *worker) traceBlock(start, count uint32) (hits uint64, distSum float64, err error) {
	var isect scene.Intersection
	for index := start; index < start+count; index++ {
		existRay := w.rays[index]
		anyHit := w.accel.Hit(&existRay)

		nearestRay := w.rays[index]
		nearestHit := w.accel.Intersect(&nearestRay, &isect)

		if anyHit != nearestHit {
			return 0, 0, fmt.Errorf("tracer: existence and nearest-hit queries disagree for ray %d (hit: %t, nearest: %t)", index, anyHit, nearestHit)
		}

		if nearestHit {
			hits++
			distSum += isect.T
		}
	}

	return hits, distSum, nil
}

// Trace a batch of rays against an accelerator using a pool of worker
// go-routines. The batch is processed in rounds; each round is split into
// per-worker blocks by the configured scheduler. Context cancellation is
// checked between rounds.
func Trace(ctx context.Context, accel Accelerator, rays []scene.Ray, opts Options) (*Stats, error) {
	logger := log.New("tracer")

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.BlockSize == 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.Scheduler == nil {
		opts.Scheduler = PerfectScheduler()
	}

	// Buffered so that workers never block while signaling completion
	doneChan := make(chan int, opts.Workers)
	errChan := make(chan error, opts.Workers)

	var wg sync.WaitGroup
	workers := make([]*worker, opts.Workers)
	for idx := range workers {
		workers[idx] = &worker{
			id:           idx,
			accel:        accel,
			rays:         rays,
			blockReqChan: make(chan BlockRequest, 1),
			stats:        WorkerStats{Id: idx},
		}
		wg.Add(1)
		go workers[idx].run(&wg)
	}
	defer func() {
		for _, w := range workers {
			close(w.blockReqChan)
		}
		wg.Wait()
	}()

	start := time.Now()
	workerStats := make([]WorkerStats, len(workers))
	roundSize := uint32(len(rays))
	if size := uint64(opts.BlockSize) * uint64(opts.Workers); size < uint64(roundSize) {
		roundSize = uint32(size)
	}
	for offset := uint32(0); offset < uint32(len(rays)); {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		count := roundSize
		if remaining := uint32(len(rays)) - offset; remaining < count {
			count = remaining
		}

		for idx, w := range workers {
			workerStats[idx] = w.stats
		}
		blockAssignment := opts.Scheduler.Schedule(workerStats, count)

		pending := 0
		blockStart := offset
		for idx, w := range workers {
			if blockAssignment[idx] == 0 {
				continue
			}
			w.blockReqChan <- BlockRequest{
				Start:    blockStart,
				Count:    blockAssignment[idx],
				DoneChan: doneChan,
				ErrChan:  errChan,
			}
			blockStart += blockAssignment[idx]
			pending++
		}

		// Wait for all blocks to complete
		var err error
		for ; pending > 0; pending-- {
			select {
			case <-doneChan:
			case blockErr := <-errChan:
				if err == nil {
					err = blockErr
				}
			}
		}
		if err != nil {
			return nil, err
		}

		if log.Enabled(log.Debug) {
			logger.Debugf("traced rays %d-%d, block assignment: %v", offset, offset+count-1, blockAssignment)
		}
		offset += count
	}

	stats := &Stats{
		Workers:   make([]WorkerStats, len(workers)),
		TraceTime: time.Since(start),
	}
	var distSum float64
	for idx, w := range workers {
		stats.Workers[idx] = w.stats
		stats.Rays += w.stats.Rays
		stats.Hits += w.stats.Hits
		distSum += w.distSum
	}
	if stats.Hits != 0 {
		stats.MeanDistance = distSum / float64(stats.Hits)
	}

	return stats, nil
}
