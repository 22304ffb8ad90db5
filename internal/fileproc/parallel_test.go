package fileproc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/augurhq/augur/pkg/models"
	"github.com/augurhq/augur/pkg/parser"
)

func fileList(n int) []models.FileInfo {
	files := make([]models.FileInfo, n)
	for i := range files {
		files[i] = models.FileInfo{RelPath: string(rune('a'+i)) + ".go"}
	}
	return files
}

func TestMapFiles_ProcessesEveryFile(t *testing.T) {
	files := fileList(8)

	var progress atomic.Int64
	results := MapFiles(context.Background(), files, 4,
		func(_ *parser.Parser, file models.FileInfo) (string, error) {
			return file.RelPath, nil
		},
		func() { progress.Add(1) },
		nil)

	if len(results) != len(files) {
		t.Errorf("len(results) = %d, want %d", len(results), len(files))
	}
	if got := progress.Load(); got != int64(len(files)) {
		t.Errorf("progress calls = %d, want %d", got, len(files))
	}

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r] = true
	}
	for _, f := range files {
		if !seen[f.RelPath] {
			t.Errorf("missing result for %s", f.RelPath)
		}
	}
}

func TestMapFiles_EmptyInput(t *testing.T) {
	results := MapFiles(context.Background(), nil, 4,
		func(_ *parser.Parser, _ models.FileInfo) (int, error) { return 0, nil },
		nil, nil)
	if results != nil {
		t.Errorf("results = %v, want nil for no files", results)
	}
}

func TestMapFiles_ErrorsGoToCallback(t *testing.T) {
	files := fileList(4)
	boom := errors.New("unreadable")

	var failed []string
	results := MapFiles(context.Background(), files, 1,
		func(_ *parser.Parser, file models.FileInfo) (string, error) {
			if file.RelPath == "b.go" {
				return "", boom
			}
			return file.RelPath, nil
		},
		nil,
		func(file models.FileInfo, err error) {
			if !errors.Is(err, boom) {
				t.Errorf("callback err = %v, want %v", err, boom)
			}
			failed = append(failed, file.RelPath)
		})

	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
	if len(failed) != 1 || failed[0] != "b.go" {
		t.Errorf("failed = %v, want [b.go]", failed)
	}
}

func TestMapFiles_CanceledContextReturnsNil(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	results := MapFiles(ctx, fileList(8), 2,
		func(_ *parser.Parser, file models.FileInfo) (string, error) {
			calls.Add(1)
			return file.RelPath, nil
		},
		nil, nil)

	if results != nil {
		t.Errorf("results = %v, want nil after cancellation", results)
	}
	if calls.Load() != 0 {
		t.Errorf("fn ran %d times after upfront cancellation, want 0", calls.Load())
	}
}

func TestMapFiles_DefaultWorkerCount(t *testing.T) {
	// maxWorkers <= 0 falls back to a CPU-derived pool size; the call
	// must still process everything.
	results := MapFiles(context.Background(), fileList(3), 0,
		func(_ *parser.Parser, file models.FileInfo) (string, error) {
			return file.RelPath, nil
		},
		nil, nil)
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}
