// Command rdt-infer runs a forest of trained trees against a depth image
// and writes the resulting per-pixel label probability map.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/infer"
	"github.com/mpraski/rdforest/rdt"
	"github.com/mpraski/rdforest/rdt/rdtbinary"
	"github.com/mpraski/rdforest/rdt/rdtjson"
)

func main() {
	if err := cliParser().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type inferCmdConfig struct {
	trees      []string
	depthPath  string
	outPath    string
	w, h       int
	bgDepth    float32
	flipMap    string
	nThreads   int
}

func cliParser() *cobra.Command {
	c := &inferCmdConfig{bgDepth: 1000}
	cmd := &cobra.Command{
		Use:   "rdt-infer",
		Short: "rdt-infer runs a forest of trees against a depth image",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(c)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&c.trees, "tree", nil, "path to a trained tree (.json or .rdt); repeat for a forest (required)")
	f.StringVar(&c.depthPath, "depth", "", "path to a flat little-endian float32 depth image (required)")
	f.StringVar(&c.outPath, "out", "", "path to write the flat float32 probability map to (defaults to stdout)")
	f.IntVar(&c.w, "width", 512, "frame width in pixels")
	f.IntVar(&c.h, "height", 424, "frame height in pixels")
	f.Float32Var(&c.bgDepth, "bg-depth", c.bgDepth, "depth value marking a background pixel")
	f.StringVar(&c.flipMap, "flip-map", "", "comma-separated label permutation enabling flip-symmetric inference")
	f.IntVar(&c.nThreads, "n-threads", 0, "worker goroutines (0: GOMAXPROCS)")
	return cmd
}

func run(c *inferCmdConfig) error {
	if len(c.trees) == 0 {
		return fmt.Errorf("at least one --tree is required")
	}
	if c.depthPath == "" {
		return fmt.Errorf("--depth is required")
	}

	trees := make([]*rdt.Tree, len(c.trees))
	for i, path := range c.trees {
		t, err := loadTree(path)
		if err != nil {
			return fmt.Errorf("loading tree %s: %w", path, err)
		}
		trees[i] = t
	}

	img, err := loadDepth(c.depthPath, c.w, c.h)
	if err != nil {
		return err
	}

	flip, err := parseFlipMap(c.flipMap)
	if err != nil {
		return err
	}

	result := infer.Run(trees, img, c.bgDepth, flip, c.nThreads)

	out := os.Stdout
	if c.outPath != "" {
		f, err := os.Create(c.outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	probs := make([]float32, len(result.Probs))
	for i, p := range result.Probs {
		probs[i] = float32(p)
	}
	return binary.Write(out, binary.LittleEndian, probs)
}

func loadTree(path string) (*rdt.Tree, error) {
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

func loadDepth(path string, w, h int) (*frame.Depth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pix := make([]float32, w*h)
	if err := binary.Read(f, binary.LittleEndian, pix); err != nil {
		return nil, fmt.Errorf("reading depth image: %w", err)
	}
	return &frame.Depth{W: w, H: h, Pix: pix}, nil
}

func parseFlipMap(s string) (infer.FlipMap, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	m := make(infer.FlipMap, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing flip map: %w", err)
		}
		m[i] = v
	}
	return m, nil
}
