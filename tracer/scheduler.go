package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split a batch of rays into blocks of variable size and assign them
	// to the pool of workers using feedback collected from previous
	// batches.
	//
	// This function returns the block size assignment for each worker
	// stat entry in the input list. The assigned sizes always add up
	// to rayCount.
	Schedule(workers []WorkerStats, rayCount uint32) []uint32
}

// The naive scheduler splits the batch evenly between workers.
type naiveScheduler struct {
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(workers []WorkerStats, rayCount uint32) []uint32 {
	blockAssignment := make([]uint32, len(workers))
	if len(workers) == 0 {
		return blockAssignment
	}

	share := rayCount / uint32(len(workers))
	for idx := range blockAssignment {
		blockAssignment[idx] = share
	}

	// Append any leftover rays to the first worker
	blockAssignment[0] += rayCount - share*uint32(len(workers))
	return blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent batches is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split batch into blocks of variable size and assign to the pool of workers
// using feedback collected from previous batches.
//
// When previous batch information is available the scheduler uses the
// following formula for estimating the workload for worker w and batch i+1:
// w_i, b_i+1 = (blockRays,w_i / time,w_i) / Σ(blockRays_i / time_i)
func (sch *perfectScheduler) Schedule(workers []WorkerStats, rayCount uint32) []uint32 {
	// If this is the first time we try to schedule, the number of workers
	// has changed or any worker has no timing information we need to
	// reset the block assignments
	if len(sch.blockAssignment) != len(workers) || !haveTimings(workers) {
		sch.blockAssignment = NaiveScheduler().Schedule(workers, rayCount)
		return sch.blockAssignment
	}

	var total float64 = 0.0
	for _, stat := range workers {
		total += float64(stat.BlockRays) / float64(stat.BlockTime)
	}

	// Only guarantee a minimum of one ray per worker if there are enough
	// rays to go around
	var minRays float64 = 0.0
	if rayCount >= uint32(len(workers)) {
		minRays = 1.0
	}

	scaler := float64(rayCount) / total
	var scheduledRays uint32 = 0
	for idx, stat := range workers {
		sch.blockAssignment[idx] = uint32(math.Max(minRays, math.Floor(float64(stat.BlockRays)/float64(stat.BlockTime)*scaler)))
		scheduledRays += sch.blockAssignment[idx]
	}

	// In case rays don't add up to the batch size, append the missing ones
	// to the first worker or take the surplus from the largest blocks
	for scheduledRays > rayCount {
		largest := 0
		for idx, rays := range sch.blockAssignment {
			if rays > sch.blockAssignment[largest] {
				largest = idx
			}
		}
		sch.blockAssignment[largest]--
		scheduledRays--
	}
	sch.blockAssignment[0] += rayCount - scheduledRays

	return sch.blockAssignment
}

func haveTimings(workers []WorkerStats) bool {
	for _, stat := range workers {
		if stat.BlockRays == 0 || stat.BlockTime <= 0 {
			return false
		}
	}
	return true
}
