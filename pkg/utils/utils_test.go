package utils

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "opposite vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{-1, 0, 0},
			expected: -1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1, 0, 0},
			b:        []float32{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "parallel non-unit vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{2, 4, 6},
			expected: 1.0,
		},
		{
			name:     "different lengths",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2},
			expected: 0.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float32{0, 0, 0},
			b:        []float32{1, 2, 3},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTopKByScore(t *testing.T) {
	t.Parallel()

	items := []ScoredItem[string]{
		{Item: "c", Score: 0.3},
		{Item: "a", Score: 0.9},
		{Item: "d", Score: 0.1},
		{Item: "b", Score: 0.7},
	}

	t.Run("returns k highest in descending order", func(t *testing.T) {
		got := TopKByScore(items, 2)
		if len(got) != 2 {
			t.Fatalf("expected 2 items, got %d", len(got))
		}
		if got[0].Item != "a" || got[1].Item != "b" {
			t.Errorf("expected [a b], got [%s %s]", got[0].Item, got[1].Item)
		}
	})

	t.Run("k larger than input returns all sorted", func(t *testing.T) {
		got := TopKByScore(items, 10)
		if len(got) != len(items) {
			t.Fatalf("expected %d items, got %d", len(items), len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].Score > got[i-1].Score {
				t.Errorf("result not descending at index %d", i)
			}
		}
	})

	t.Run("non-positive k returns nil", func(t *testing.T) {
		if got := TopKByScore(items, 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestConcurrentExecutorExecute(t *testing.T) {
	t.Parallel()

	t.Run("errors are positional", func(t *testing.T) {
		executor := NewConcurrentExecutor(2)
		failure := errors.New("boom")

		errs := executor.Execute(context.Background(),
			func() error { return nil },
			func() error { return failure },
			func() error { return nil },
		)

		if len(errs) != 3 {
			t.Fatalf("expected 3 results, got %d", len(errs))
		}
		if errs[0] != nil || errs[2] != nil {
			t.Errorf("expected nil errors at 0 and 2, got %v and %v", errs[0], errs[2])
		}
		if !errors.Is(errs[1], failure) {
			t.Errorf("expected failure at index 1, got %v", errs[1])
		}
	})

	t.Run("panic surfaces as PanicError", func(t *testing.T) {
		executor := NewConcurrentExecutor(1)

		errs := executor.Execute(context.Background(),
			func() error { panic("worker panic") },
		)

		var panicErr *PanicError
		if !errors.As(errs[0], &panicErr) {
			t.Fatalf("expected PanicError, got %T", errs[0])
		}
		if panicErr.Value != "worker panic" {
			t.Errorf("expected panic value 'worker panic', got %v", panicErr.Value)
		}
	})

	t.Run("cancelled context aborts queued work", func(t *testing.T) {
		executor := NewConcurrentExecutor(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		release := make(chan struct{})
		executor.semaphore <- struct{}{}
		go func() {
			<-release
			<-executor.semaphore
		}()

		errs := executor.Execute(ctx, func() error { return nil })
		close(release)

		if !errors.Is(errs[0], context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", errs[0])
		}
	})

	t.Run("no functions returns nil", func(t *testing.T) {
		executor := NewConcurrentExecutor(1)
		if errs := executor.Execute(context.Background()); errs != nil {
			t.Errorf("expected nil, got %v", errs)
		}
	})
}

func TestExecuteWithResults(t *testing.T) {
	t.Parallel()

	results, errs := ExecuteWithResults(context.Background(), 2,
		func() (int, error) { return 1, nil },
		func() (int, error) { return 0, errors.New("boom") },
		func() (int, error) { return 3, nil },
	)

	if results[0] != 1 || results[2] != 3 {
		t.Errorf("expected results [1 _ 3], got %v", results)
	}
	if errs[0] != nil || errs[1] == nil || errs[2] != nil {
		t.Errorf("expected error only at index 1, got %v", errs)
	}
}

func TestRecoverAsError(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		fn := func() (err error) {
			defer RecoverAsError(&err)
			panic("test panic")
		}

		err := fn()
		var panicErr *PanicError
		if !errors.As(err, &panicErr) {
			t.Fatalf("expected PanicError, got %T", err)
		}
		if panicErr.Value != "test panic" {
			t.Errorf("expected panic value 'test panic', got %v", panicErr.Value)
		}
		if panicErr.StackTrace == "" {
			t.Error("expected stack trace to be populated")
		}
	})

	t.Run("preserves original error", func(t *testing.T) {
		originalErr := errors.New("original error")
		fn := func() (err error) {
			defer RecoverAsError(&err)
			return originalErr
		}

		if err := fn(); err != originalErr {
			t.Errorf("expected original error, got %v", err)
		}
	})
}
