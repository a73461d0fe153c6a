// Package batch normalizes streams of URLs on a pool of workers.
package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/devraulu/urlnorm/pkg/normalize"
)

type Result struct {
	// Index is the position of Input in the stream.
	Index      int
	Input      string
	Normalized string
	Err        error
	// Skipped marks blank lines and '#' comments.
	Skipped bool
}

type job struct {
	index int
	input string
}

type Runner struct {
	workers int
	// window caps how many inputs may be read ahead of the last emitted
	// result, which bounds the reorder buffer.
	window int
	opts   *normalize.Options
	Stats  Stats
}

// New returns a Runner with the given number of workers (at least one).
// opts is shared read-only by every worker.
func New(workers int, opts *normalize.Options) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{workers: workers, window: workers * 4, opts: opts}
}

// Run normalizes every input and calls emit once per input, in input
// order, from the calling goroutine. It returns when inputs is closed and
// drained, or with ctx.Err() when ctx is cancelled first.
func (r *Runner) Run(ctx context.Context, inputs <-chan string, emit func(Result)) error {
	r.Stats = Stats{StartTime: time.Now()}

	jobs := make(chan job, r.workers)
	results := make(chan Result, r.workers)
	window := make(chan struct{}, r.window)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r.worker(ctx, id, jobs, results)
		}(i)
	}

	go dispatch(ctx, inputs, jobs, window)

	go func() {
		wg.Wait()
		close(results)
	}()

	r.coordinator(results, window, emit)
	r.Stats.EndTime = time.Now()

	slog.Info("batch complete",
		slog.Int("processed", r.Stats.Processed),
		slog.Int("errored", r.Stats.Errored),
		slog.Int("skipped", r.Stats.Skipped),
		slog.Duration("elapsed", r.Stats.Elapsed()),
		slog.Float64("urls_per_sec", r.Stats.PerSecond()),
	)

	return ctx.Err()
}

// dispatch takes a window slot before reading each input. The coordinator
// gives the slot back once that input's result is emitted.
func dispatch(ctx context.Context, inputs <-chan string, jobs chan<- job, window chan<- struct{}) {
	defer close(jobs)
	for i := 0; ; i++ {
		select {
		case window <- struct{}{}:
		case <-ctx.Done():
			return
		}

		select {
		case in, ok := <-inputs:
			if !ok {
				return
			}
			select {
			case jobs <- job{index: i, input: in}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// coordinator reorders results. A result is held until every earlier one
// has been emitted.
func (r *Runner) coordinator(results <-chan Result, window <-chan struct{}, emit func(Result)) {
	pending := make(map[int]Result)
	next := 0
	for res := range results {
		pending[res.Index] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			r.Stats.record(ready)
			if ready.Err != nil {
				slog.Debug("normalize failed", slog.String("url", ready.Input), slog.Any("err", ready.Err))
			}
			emit(ready)
			<-window
		}
	}

	if len(pending) > 0 {
		slog.Warn("batch interrupted", slog.Int("dropped", len(pending)), slog.Int("emitted", next))
	}
}

func (r *Runner) worker(ctx context.Context, id int, jobs <-chan job, results chan<- Result) {
	slog.Debug("worker started", "id", id)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			select {
			case results <- r.normalize(j):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (r *Runner) normalize(j job) Result {
	res := Result{Index: j.index, Input: j.input}

	trimmed := strings.TrimSpace(j.input)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		res.Skipped = true
		return res
	}

	res.Normalized, res.Err = normalize.Normalize(j.input, r.opts)
	return res
}
