package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/polaris-bvh/asset/reader"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/scene/bvh"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Build a BVH for a scene file and display its statistics.
func BuildBVH(ctx *cli.Context) error {
	setupLogging(ctx)

	_, tree, err := loadScene(ctx)
	if err != nil {
		return err
	}

	displayBVHStats(tree.Stats())
	return nil
}

// Parse the scene file passed as the command argument and build a BVH for
// its primitives. The returned primitive list keeps the original scene order
// and can serve as a brute-force reference.
func loadScene(ctx *cli.Context) (scene.PrimitiveList, *bvh.BVH, error) {
	if ctx.NArg() != 1 {
		return nil, nil, errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return nil, nil, err
	}

	prims := sc.Primitives()
	if len(prims) == 0 {
		logger.Warning("scene does not contain any primitives")
	}
	reference := make(scene.PrimitiveList, len(prims))
	copy(reference, prims)

	opts := bvh.Options{
		MaxLeafSize: ctx.Int("leaf-size"),
		BucketCount: ctx.Int("buckets"),
	}
	if opts.MaxLeafSize < 1 {
		return nil, nil, fmt.Errorf("invalid leaf size %d; must be at least 1", opts.MaxLeafSize)
	}

	logger.Noticef("building BVH for %d primitives", len(prims))
	tree := bvh.Build(prims, opts)

	return reference, tree, nil
}

func displayBVHStats(stats bvh.Stats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", stats.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", stats.Nodes)})
	table.Append([]string{"Leafs", fmt.Sprintf("%d", stats.Leafs)})
	table.Append([]string{"Degenerate leafs", fmt.Sprintf("%d", stats.DegenerateLeafs)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", stats.MaxDepth)})
	table.Append([]string{"Max leaf size", fmt.Sprintf("%d", stats.MaxLeafSize)})
	table.Append([]string{"Avg leaf size", fmt.Sprintf("%.2f", stats.AvgLeafSize())})
	table.SetFooter([]string{"Build time", stats.BuildTime.String()})

	table.Render()
	logger.Noticef("BVH statistics\n%s", buf.String())
}
