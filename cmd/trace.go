package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Trace a batch of random rays against the scene BVH.
func TraceRays(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := traceOptions(ctx)
	if err != nil {
		return err
	}
	count, err := rayCount(ctx)
	if err != nil {
		return err
	}

	_, tree, err := loadScene(ctx)
	if err != nil {
		return err
	}

	rays := tracer.RandomRays(tree.BoundingBox(), count, ctx.Int64("seed"))

	// Abort tracing on ctrl+c
	traceCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Noticef("tracing %d rays", len(rays))
	stats, err := tracer.Trace(traceCtx, tree, rays, opts)
	if err != nil {
		return err
	}

	displayTraceStats(stats)
	return nil
}

func displayTraceStats(stats *tracer.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Rays", "Hits", "% of batch", "Trace time"})
	for _, stat := range stats.Workers {
		var batchPercent float64
		if stats.Rays != 0 {
			batchPercent = 100.0 * float64(stat.Rays) / float64(stats.Rays)
		}
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%d", stat.Hits),
			fmt.Sprintf("%02.1f %%", batchPercent),
			stat.TraceTime.String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", stats.Rays),
		fmt.Sprintf("%d", stats.Hits),
		fmt.Sprintf("%.0f rays/s", stats.RaysPerSec()),
		stats.TraceTime.String(),
	})

	table.Render()
	logger.Noticef("trace statistics (mean hit distance: %.4f)\n%s", stats.MeanDistance, buf.String())
}
