package memo_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/increment_al_go/memo"
)

func naiveFib(n int) int {
	if n <= 1 {
		return n
	}
	return naiveFib(n-1) + naiveFib(n-2)
}

func memoFib() func(context.Context, int) (int, error) {
	var fib func(context.Context, int) (int, error)
	fib = memo.MemoizeI1O1("fib", func(ctx context.Context, n int) (int, error) {
		if n <= 1 {
			return n, nil
		}
		a, err := fib(ctx, n-1)
		if err != nil {
			return 0, err
		}
		b, err := fib(ctx, n-2)
		return a + b, err
	})
	return fib
}

func BenchmarkNaiveFib20(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = naiveFib(20)
	}
}

// Warm store: every call after the first is a hit on fib(20).
func BenchmarkMemoizedFib20(b *testing.B) {
	ctx, end := memo.WithContext(context.Background(), memo.ContextConfig{})
	defer end()
	fib := memoFib()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fib(ctx, 20)
	}
}

// Each iteration forgets the leaf and rebuilds the whole chain.
func BenchmarkMemoizedFib20Rebuild(b *testing.B) {
	ctx, end := memo.WithContext(context.Background(), memo.ContextConfig{})
	defer end()
	fib := memoFib()
	leaf := memo.MustTarget("fib", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fib(ctx, 20)
		_, _ = memo.Invalidate(ctx, leaf)
	}
}

// Each iteration opens an overlay, tweaks the leaf and rebuilds above it.
func BenchmarkMemoizedFib20Overlay(b *testing.B) {
	ctx, end := memo.WithContext(context.Background(), memo.ContextConfig{})
	defer end()
	fib := memoFib()
	_, _ = fib(ctx, 20)
	leaf := memo.MustTarget("fib", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		overlay, endOverlay := memo.WithContext(ctx, memo.ContextConfig{})
		_ = memo.Tweak(overlay, leaf, 2)
		_, _ = fib(overlay, 20)
		endOverlay()
	}
}
