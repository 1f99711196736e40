// Command rdt-train grows a randomized decision tree from a frame corpus
// and writes it to disk in JSON or binary .rdt format.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/redis.v5"

	"github.com/mpraski/rdforest/checkpoint/redisstore"
	"github.com/mpraski/rdforest/corpus"
	"github.com/mpraski/rdforest/rdt"
	"github.com/mpraski/rdforest/rdt/rdtbinary"
	"github.com/mpraski/rdforest/rdt/rdtjson"
	"github.com/mpraski/rdforest/train"
)

func main() {
	if err := cliParser().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type trainCmdConfig struct {
	train.Config
	w, h      int
	fov       float64
	bgDepth   float32
	redisAddr string
	leaseTTL  time.Duration
}

func cliParser() *cobra.Command {
	cfg := train.DefaultConfig()
	c := &trainCmdConfig{Config: cfg, w: 512, h: 424, fov: 1.2291, bgDepth: 1000}

	cmd := &cobra.Command{
		Use:   "rdt-train",
		Short: "rdt-train grows a randomized decision tree from a depth/label frame corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(c)
		},
	}

	f := cmd.Flags()
	f.StringVar(&c.DataDir, "data-dir", "", "directory holding the frame corpus (required)")
	f.StringVar(&c.IndexName, "index", c.IndexName, "name of the index file within data-dir")
	f.StringVar(&c.OutFile, "out", "", "path to write the trained tree to (.json or .rdt, required)")
	f.BoolVar(&c.Reload, "reload", c.Reload, "resume training from an existing checkpoint at --out")
	f.IntVar(&c.NPixels, "n-pixels", c.NPixels, "sample pixels drawn per frame")
	f.IntVar(&c.NThresholds, "n-thresholds", c.NThresholds, "candidate thresholds per node")
	f.Float64Var(&c.ThresholdRange, "threshold-range", c.ThresholdRange, "span of the candidate threshold range")
	f.IntVar(&c.NUV, "n-uv", c.NUV, "candidate (u,v) offsets per node")
	f.Float64Var(&c.UVRange, "uv-range", c.UVRange, "span of the candidate uv offset range, in meters")
	f.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "maximum tree depth")
	f.Int64Var(&c.Seed, "seed", c.Seed, "PRNG seed")
	f.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log progress to stderr")
	f.IntVar(&c.NThreads, "n-threads", c.NThreads, "worker threads")
	f.IntVar(&c.w, "width", c.w, "frame width in pixels")
	f.IntVar(&c.h, "height", c.h, "frame height in pixels")
	f.Float64Var(&c.fov, "fov", c.fov, "vertical field of view, in radians")
	f.Float32Var(&c.bgDepth, "bg-depth", c.bgDepth, "depth value marking a background pixel")
	f.StringVar(&c.redisAddr, "redis-addr", "", "redis address coordinating --reload across processes (optional)")
	f.DurationVar(&c.leaseTTL, "lease-ttl", 6*time.Hour, "how long a --redis-addr lease survives an unreleased crash")

	return cmd
}

func run(c *trainCmdConfig) error {
	if c.DataDir == "" {
		return fmt.Errorf("--data-dir is required")
	}
	if c.OutFile == "" {
		return fmt.Errorf("--out is required")
	}

	loader := &corpus.DirLoader{
		DataDir:   c.DataDir,
		IndexName: c.IndexName,
		W:         c.w,
		H:         c.h,
		FOV:       c.fov,
		BgDepth:   c.bgDepth,
	}
	frames, err := loader.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if c.Reload && c.redisAddr != "" {
		lease, err := acquireLease(ctx, c.redisAddr, c.OutFile, c.leaseTTL)
		if err != nil {
			return fmt.Errorf("acquiring reload lease: %w", err)
		}
		defer lease.Release()
	}

	var checkpoint *rdt.Tree
	if c.Reload {
		checkpoint, err = loadCheckpoint(c.OutFile)
		if err != nil {
			return fmt.Errorf("loading checkpoint: %w", err)
		}
	}

	tr := train.New(c.Config)
	tree, trainErr := tr.Train(ctx, frames, checkpoint)
	if tree == nil {
		return trainErr
	}

	if err := writeTree(c.OutFile, tree); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if trainErr != nil && trainErr != context.Canceled {
		return trainErr
	}
	return nil
}

func acquireLease(ctx context.Context, addr, outFile string, ttl time.Duration) (*redisstore.Lease, error) {
	rc := redis.NewClient(&redis.Options{Addr: addr})
	store := redisstore.New(rc, "rdt-train", ttl)
	return store.Acquire(ctx, outFile)
}

func loadCheckpoint(path string) (*rdt.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".json") {
		return rdtjson.Decode(f)
	}
	return rdtbinary.Decode(f)
}

func writeTree(path string, tree *rdt.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.HasSuffix(path, ".json") {
		return rdtjson.Encode(f, tree)
	}
	return rdtbinary.Encode(f, tree)
}
