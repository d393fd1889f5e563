// Package optimizer coordinates a batch optimization run. Targets are
// dispatched to a fixed pool of workers; each worker drives one
// Ghostscript invocation at a time. A failure on one file never stops
// the rest of the batch.
package optimizer

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jamesainslie/squeeze/pkg/squeeze/cache"
	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
	"github.com/jamesainslie/squeeze/pkg/squeeze/types"
)

// DefaultWorkers is the number of concurrent Ghostscript processes.
const DefaultWorkers = 4

// Engine optimizes a single target. Implemented by gs.Tool.
type Engine interface {
	Optimize(ctx context.Context, target types.Target) types.Result
}

// Options configures a batch run.
type Options struct {
	// Workers is the pool size. Values below 1 use DefaultWorkers.
	// One worker processes the batch sequentially.
	Workers int

	// Cache, when non-nil, skips targets already optimized since their
	// last change and records new outcomes.
	Cache *cache.Cache

	// OnResult, when non-nil, is called from worker goroutines as each
	// target finishes. Callbacks may arrive out of input order.
	OnResult func(types.Result)
}

// Runner executes batch runs against an Engine.
type Runner struct {
	engine Engine
	opts   Options
	logger *logging.Logger
}

// New creates a Runner.
func New(engine Engine, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	return &Runner{
		engine: engine,
		opts:   opts,
		logger: logging.Get("optimizer"),
	}
}

// Run optimizes all targets and returns per-file results in input
// order along with the aggregated summary. Cancelling ctx stops
// dispatching new targets; in-flight invocations are interrupted
// through the same context.
func (r *Runner) Run(ctx context.Context, targets []types.Target) ([]types.Result, types.Summary) {
	start := time.Now()
	results := make([]types.Result, len(targets))

	workers := r.opts.Workers
	if workers > len(targets) {
		workers = len(targets)
	}

	r.logger.Info("run started", "targets", len(targets), "workers", workers)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.processOne(ctx, targets[i])
				if r.opts.OnResult != nil {
					r.opts.OnResult(results[i])
				}
			}
		}()
	}

dispatch:
	for i := range targets {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Targets never dispatched after a cancellation report as skipped.
	for i := range results {
		if results[i].Path == "" {
			results[i] = types.Result{
				Path:         targets[i].Path,
				OriginalSize: targets[i].Size,
				Status:       types.StatusSkipped,
				Error:        "interrupted",
			}
		}
	}

	summary := types.Summarize(results, time.Since(start))
	r.logger.Info("run finished",
		"optimized", summary.Optimized,
		"no_gain", summary.NoGain,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"saved", summary.Saved(),
	)
	return results, summary
}

// processOne runs a single target through the cache and the engine.
func (r *Runner) processOne(ctx context.Context, target types.Target) types.Result {
	if r.opts.Cache != nil && r.opts.Cache.IsFresh(target) {
		r.logger.Debug("already optimized, skipping", "path", target.Path)
		return types.Result{
			Path:          target.Path,
			OriginalSize:  target.Size,
			OptimizedSize: target.Size,
			Status:        types.StatusSkipped,
		}
	}

	res := r.engine.Optimize(ctx, target)

	if r.opts.Cache != nil && res.Succeeded() {
		r.recordOutcome(target.Path)
	}
	return res
}

// recordOutcome stores the file's post-run state so unchanged files
// are skipped next time. The file is re-statted because a replacement
// changed its size and mtime.
func (r *Runner) recordOutcome(path string) {
	info, err := os.Stat(path)
	if err != nil {
		r.logger.Warn("stat after optimize failed", "path", path, "error", err)
		return
	}

	target := types.Target{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	if err := r.opts.Cache.Record(target); err != nil {
		r.logger.Warn("cache record failed", "path", path, "error", err)
	}
}
