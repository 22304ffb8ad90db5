// Package fileproc provides the bounded worker pool that fans file
// analysis out across cores.
package fileproc

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc receives file-scoped failures. Workers never abort the run
// for one file; the callback decides what the failure becomes.
type ErrorFunc func(file models.FileInfo, err error)

// MapFiles processes files in parallel, calling fn for each file with a
// dedicated parser instance. Results arrive in arbitrary order; callers
// that need determinism sort afterward. Once ctx is canceled no new file
// is dispatched and results of in-flight tasks are discarded.
func MapFiles[T any](ctx context.Context, files []models.FileInfo, maxWorkers int, fn func(*parser.Parser, models.FileInfo) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, 0, len(files))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, file := range files {
		select {
		case <-ctx.Done():
			// Stop dispatching; tasks already running finish on their own.
			p.Wait()
			return nil
		default:
		}

		p.Go(func() {
			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, file)

			if onProgress != nil {
				onProgress()
			}

			if err != nil {
				if onError != nil {
					onError(file, err)
				}
				return
			}

			if ctx.Err() != nil {
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return results
}
