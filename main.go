package main

import (
	"os"

	"github.com/achilleasa/polaris-bvh/cmd"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene/bvh"
	"github.com/achilleasa/polaris-bvh/tracer"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	buildFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "leaf-size, l",
			Value: bvh.DefaultMaxLeafSize,
			Usage: "max number of primitives per BVH leaf",
		},
		cli.IntFlag{
			Name:  "buckets",
			Value: bvh.DefaultBucketCount,
			Usage: "number of SAH buckets per axis",
		},
	}
	rayFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "rays, r",
			Value: 100000,
			Usage: "number of random rays to cast",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "seed for the random ray generator",
		},
	}

	app := cli.NewApp()
	app.Name = "polaris-bvh"
	app.Usage = "build and query bounding volume hierarchies for ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a BVH for a scene and display tree statistics",
			Description: `
Parse a scene definition from a wavefront obj file and build a BVH tree over
its triangles and spheres using the surface area heuristic.`,
			ArgsUsage: "scene_file.obj",
			Flags:     buildFlags,
			Action:    cmd.BuildBVH,
		},
		{
			Name:  "trace",
			Usage: "cast random rays against the scene BVH",
			Description: `
Build a BVH for the scene and run existence and nearest-hit queries for a batch
of random rays aimed at the scene bounds using a pool of worker go-routines.`,
			ArgsUsage: "scene_file.obj",
			Flags: append(append([]cli.Flag{}, buildFlags...), append(rayFlags,
				cli.IntFlag{
					Name:  "workers, w",
					Value: 0,
					Usage: "number of tracing go-routines (0 uses one per CPU)",
				},
				cli.IntFlag{
					Name:  "block-size",
					Value: tracer.DefaultBlockSize,
					Usage: "number of rays per worker and batch",
				},
			)...),
			Action: cmd.TraceRays,
		},
		{
			Name:  "verify",
			Usage: "check BVH query results against a brute-force search",
			Description: `
Build a BVH for the scene and compare its answers for a batch of random rays
against a linear search over all scene primitives.`,
			ArgsUsage: "scene_file.obj",
			Flags:     append(append([]cli.Flag{}, buildFlags...), rayFlags...),
			Action:    cmd.VerifyBVH,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("polaris-bvh").Error(err.Error())
		os.Exit(1)
	}
}
