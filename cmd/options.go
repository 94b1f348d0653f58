package cmd

import (
	"fmt"

	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/urfave/cli"
)

// Get the number of random rays to cast.
func rayCount(ctx *cli.Context) (int, error) {
	count := ctx.Int("rays")
	if count < 1 {
		return 0, fmt.Errorf("invalid ray count %d; must be at least 1", count)
	}
	return count, nil
}

// Get the tracer options from the trace command flags.
func traceOptions(ctx *cli.Context) (tracer.Options, error) {
	blockSize := ctx.Int("block-size")
	if blockSize < 1 || int64(blockSize) > int64(^uint32(0)) {
		return tracer.Options{}, fmt.Errorf("invalid block size %d; must be between 1 and %d", blockSize, ^uint32(0))
	}
	workers := ctx.Int("workers")
	if workers < 0 {
		return tracer.Options{}, fmt.Errorf("invalid worker count %d; must not be negative", workers)
	}

	return tracer.Options{
		Workers:   workers,
		BlockSize: uint32(blockSize),
	}, nil
}
