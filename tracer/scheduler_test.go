package tracer

import (
	"testing"
	"time"
)

func TestNaiveScheduler(t *testing.T) {
	type spec struct {
		workers   int
		rayCount  uint32
		expBlocks []uint32
	}
	specs := []spec{
		{2, 10, []uint32{5, 5}},
		{2, 11, []uint32{6, 5}},
		{3, 2, []uint32{2, 0, 0}},
		{1, 7, []uint32{7}},
	}

	for index, s := range specs {
		sch := NaiveScheduler()
		blockAssignment := sch.Schedule(make([]WorkerStats, s.workers), s.rayCount)

		for idx, exp := range s.expBlocks {
			if blockAssignment[idx] != exp {
				t.Fatalf("[spec %d] expected worker %d to be assigned %d rays; got %d", index, idx, exp, blockAssignment[idx])
			}
		}
	}
}

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		rayCount uint32
		bTime1   time.Duration
		bTime2   time.Duration
		expRays1 uint32
		expRays2 uint32
	}
	specs := []spec{
		// First call always behaves like the naive scheduler
		{10, time.Duration(1), time.Duration(5), 5, 5},
		// Second call should use the block times to assign rays
		{10, time.Duration(1), time.Duration(5), 9, 1},
		// This time worker 2 performed much better
		{10, time.Duration(5), time.Duration(1), 7, 3},
	}

	workers := make([]WorkerStats, 2)

	sch := PerfectScheduler()
	for index, s := range specs {
		workers[0].BlockTime = s.bTime1
		workers[1].BlockTime = s.bTime2

		blockAssignment := sch.Schedule(workers, s.rayCount)

		if blockAssignment[0] != s.expRays1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rays; got %d", index, s.expRays1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRays2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rays; got %d", index, s.expRays2, blockAssignment[1])
		}

		workers[0].BlockRays = blockAssignment[0]
		workers[1].BlockRays = blockAssignment[1]
	}
}

func TestPerfectSchedulerAssignsExactRayCount(t *testing.T) {
	type spec struct {
		rayCount uint32
		workers  []WorkerStats
	}
	specs := []spec{
		// Fewer rays than workers
		{1, []WorkerStats{{BlockRays: 5, BlockTime: 1}, {BlockRays: 5, BlockTime: 1}}},
		// Minimum per-worker assignment overshoots the batch size
		{3, []WorkerStats{{BlockRays: 100, BlockTime: 1}, {BlockRays: 1, BlockTime: 1}, {BlockRays: 1, BlockTime: 1}}},
		{1000, []WorkerStats{{BlockRays: 3, BlockTime: 7}, {BlockRays: 11, BlockTime: 2}, {BlockRays: 5, BlockTime: 5}}},
	}

	for index, s := range specs {
		sch := PerfectScheduler()

		// Prime the scheduler so that the next call uses the worker timings
		sch.Schedule(s.workers, s.rayCount)
		blockAssignment := sch.Schedule(s.workers, s.rayCount)

		var total uint32
		for _, rays := range blockAssignment {
			total += rays
		}
		if total != s.rayCount {
			t.Fatalf("[spec %d] expected assigned rays to add up to %d; got %d (%v)", index, s.rayCount, total, blockAssignment)
		}
	}
}
