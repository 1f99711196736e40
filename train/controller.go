package train

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mpraski/rdforest/candidate"
	"github.com/mpraski/rdforest/frame"
	"github.com/mpraski/rdforest/internal/barrier"
	"github.com/mpraski/rdforest/partition"
	"github.com/mpraski/rdforest/rdt"
	"github.com/mpraski/rdforest/sample"
)

// Trainer grows one tree from one corpus under one Config.
type Trainer struct {
	cfg Config
	log logger
}

// New returns a Trainer for cfg. cfg is not validated until Train is
// called.
func New(cfg Config) *Trainer {
	return &Trainer{cfg: cfg, log: logger(cfg.Verbose)}
}

// Train grows a tree from c. If checkpoint is non-nil (typically the tree
// a previous, possibly-interrupted run wrote to cfg.OutFile), Train resumes
// from its pending frontier instead of starting at the root; cfg.Reload
// itself is not consulted here.
//
// ctx cancellation is checked at the same two points the reference
// trainer checks its own interrupt flag: between dispatching a node to
// the workers and consuming their result, and inside each worker's inner
// pixel loop. On cancellation, Train returns the partial tree built so
// far (with Untrained sentinels on whatever frontier remains) and
// ctx.Err().
func (tr *Trainer) Train(ctx context.Context, c *frame.Corpus, checkpoint *rdt.Tree) (*rdt.Tree, error) {
	if err := tr.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ppm := c.PixelsPerMeter()
	bank := candidate.Generate(tr.cfg.Seed, tr.cfg.NUV, candidate.UVRangeInPixels(tr.cfg.UVRange, ppm), tr.cfg.NThresholds, tr.cfg.ThresholdRange)

	var (
		tree  *rdt.Tree
		queue []*nodeTask
	)
	if checkpoint != nil {
		var err error
		tree, queue, err = rebuildFromCheckpoint(checkpoint, tr.cfg, c)
		if err != nil {
			return nil, err
		}
		tr.log.Logf("Resumed checkpoint: %d leaves kept, %d node(s) pending", len(tree.Leaves), len(queue))
	} else {
		tree = rdt.New(tr.cfg.MaxDepth, c.NLabels, c.BgLabel, c.FOV)
		queue = []*nodeTask{{id: 0, depth: 0, pixels: sample.Generate(c, tr.cfg.NPixels, tr.cfg.Seed)}}
	}

	interrupted := &atomic.Bool{}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			interrupted.Store(true)
		case <-done:
		}
	}()

	nThreads := tr.cfg.NThreads
	if nThreads > tr.cfg.NUV {
		nThreads = tr.cfg.NUV
	}

	sh := &sharedState{
		corpus:      c,
		bank:        bank,
		bgDepth:     c.BgDepth,
		maxDepth:    tr.cfg.MaxDepth,
		interrupted: interrupted,
		ready:       barrier.New(nThreads + 1),
		finished:    barrier.New(nThreads + 1),
	}

	workers := spawnWorkers(sh, nThreads, len(bank.UV))

	start := time.Now()
	depthStart := start
	lastDepth := -1
	for len(queue) > 0 {
		task := queue[0]
		queue = queue[1:]

		if task.depth != lastDepth {
			if lastDepth >= 0 {
				tr.log.Logf("Finished depth %d in %s", lastDepth, time.Since(depthStart))
			}
			lastDepth = task.depth
			depthStart = time.Now()
			tr.log.Logf("Training depth %d (elapsed %s)...", task.depth, time.Since(start))
		}

		sh.task = task
		sh.ready.Wait()
		sh.finished.Wait()
		sh.task = nil

		if interrupted.Load() {
			break
		}

		best := reduce(workers)
		tree.Nodes[task.id] = tr.resolve(tree, task, best, bank)
		if tree.Nodes[task.id].Kind == rdt.Internal {
			left, right := partition.Split(c, task.pixels, tree.Nodes[task.id].UV, tree.Nodes[task.id].T, sh.bgDepth)
			queue = append(queue, &nodeTask{id: rdt.Left(task.id), depth: task.depth + 1, pixels: left})
			queue = append(queue, &nodeTask{id: rdt.Right(task.id), depth: task.depth + 1, pixels: right})
		}
	}
	tr.log.Logf("Finished depth %d in %s", lastDepth, time.Since(depthStart))

	sh.ready.Wait()

	if interrupted.Load() {
		return tree, ctx.Err()
	}
	return tree, nil
}

// resolve decides whether task becomes a leaf or a split, per the
// reference trainer's rule: a node becomes a leaf when it has no room to
// split (reached max depth), its label distribution is already pure or
// empty, or no candidate improved on a zero information gain.
func (tr *Trainer) resolve(tree *rdt.Tree, task *nodeTask, best splitResult, bank *candidate.Bank) rdt.Node {
	atMaxDepth := task.depth >= tr.cfg.MaxDepth-1
	if atMaxDepth || best.rootNonzero <= 1 || best.gain <= 0 {
		return tree.AppendLeaf(best.rootNormalized)
	}
	return rdt.Node{Kind: rdt.Internal, UV: bank.UV[best.uvIndex], T: bank.T[best.tIndex]}
}

func spawnWorkers(sh *sharedState, nThreads, nUV int) []*worker {
	perThread := nUV / nThreads
	workers := make([]*worker, nThreads)
	for i := 0; i < nThreads; i++ {
		start := i * perThread
		end := start + perThread
		if i == nThreads-1 {
			end = nUV
		}
		w := &worker{index: i, uvStart: start, uvEnd: end}
		workers[i] = w
		go w.run(sh)
	}
	return workers
}

// reduce picks the best split across every worker's local best, breaking
// ties by first occurrence: workers own disjoint, ordered uv slices, so
// scanning them in index order and keeping strictly-greater gains
// reproduces the single-threaded scan's first-occurrence tie-break.
func reduce(workers []*worker) splitResult {
	var best splitResult
	best.rootNormalized = workers[0].result.rootNormalized
	best.rootTotal = workers[0].result.rootTotal
	best.rootNonzero = workers[0].result.rootNonzero
	for _, w := range workers {
		if w.result.gain > best.gain {
			best.gain = w.result.gain
			best.uvIndex = w.result.uvIndex
			best.tIndex = w.result.tIndex
			best.nLeft = w.result.nLeft
			best.nRight = w.result.nRight
		}
	}
	return best
}
