package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/contentstate"
	"github.com/tamulib-dc-labs/iiif-content-state-encoder/internal/logging"
)

// ErrTooManyReferences indicates a batch exceeded Options.MaxReferences.
var ErrTooManyReferences = errors.New("too many references in batch")

// Options tunes Run.
type Options struct {
	// Workers bounds concurrent encodes. Values < 1 mean one worker.
	Workers int
	// MaxReferences rejects larger batches up front. Zero means no limit.
	MaxReferences int
	Logger        *slog.Logger
}

// Result is the outcome for one input reference.
type Result struct {
	Index     int
	Reference contentstate.CanvasReference
	Token     string
	Variant   contentstate.Variant
	Err       error
}

// OK reports whether the reference encoded.
func (r Result) OK() bool {
	return r.Err == nil && r.Token != ""
}

// Run encodes refs concurrently. The returned slice has one entry per input
// in input order. Item failures are recorded on their Result; the error
// return is reserved for problems with the batch as a whole. Items not yet
// started when ctx is cancelled carry ctx.Err().
func Run(ctx context.Context, refs []contentstate.CanvasReference, opts Options) ([]Result, error) {
	if opts.MaxReferences > 0 && len(refs) > opts.MaxReferences {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyReferences, len(refs), opts.MaxReferences)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(refs) {
		workers = len(refs)
	}

	results := make([]Result, len(refs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = encodeOne(ctx, i, refs[i])
				if err := results[i].Err; err != nil {
					logger.DebugContext(ctx, "batch item failed",
						logging.Int("index", i),
						logging.String("canvas", refs[i].CanvasURL),
						logging.Error(err),
					)
				}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(refs); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(refs); i++ {
		results[i] = Result{Index: i, Reference: refs[i], Err: ctx.Err()}
	}

	summary := Summarize(results)
	logger.InfoContext(ctx, "batch encoded",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("total", summary.Total),
		logging.Int("encoded", summary.Encoded),
		logging.Int("failed", summary.Failed),
	)
	return results, nil
}

func encodeOne(ctx context.Context, index int, ref contentstate.CanvasReference) Result {
	result := Result{Index: index, Reference: ref}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}
	token, err := contentstate.EncodeReference(ref)
	if err != nil {
		result.Err = err
		return result
	}
	result.Token = token
	result.Variant = contentstate.VariantCanvas
	if ref.HasTarget() {
		result.Variant = contentstate.VariantAnnotation
	}
	return result
}

// Summary counts batch outcomes.
type Summary struct {
	Total   int `json:"total"`
	Encoded int `json:"encoded"`
	Failed  int `json:"failed"`
}

// Summarize tallies results.
func Summarize(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			summary.Encoded++
		} else {
			summary.Failed++
		}
	}
	return summary
}
