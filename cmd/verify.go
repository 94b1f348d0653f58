package cmd

import (
	"fmt"

	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/urfave/cli"
)

// The max number of mismatches to log.
const maxReportedMismatches = 10

// Check the scene BVH against a brute-force search over all primitives.
func VerifyBVH(ctx *cli.Context) error {
	setupLogging(ctx)

	count, err := rayCount(ctx)
	if err != nil {
		return err
	}

	reference, tree, err := loadScene(ctx)
	if err != nil {
		return err
	}

	rays := tracer.RandomRays(tree.BoundingBox(), count, ctx.Int64("seed"))

	logger.Noticef("verifying %d rays against brute-force search", len(rays))
	mismatches := tracer.Verify(tree, reference, rays)
	if len(mismatches) == 0 {
		logger.Noticef("BVH answers match for all %d rays", len(rays))
		return nil
	}

	for idx, m := range mismatches {
		if idx == maxReportedMismatches {
			logger.Errorf("... and %d more", len(mismatches)-idx)
			break
		}
		logger.Errorf("mismatch: %s", m)
	}

	return fmt.Errorf("verify: BVH answers differ from brute-force search for %d of %d rays", len(mismatches), len(rays))
}
