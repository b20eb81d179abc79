package stream_test

import (
	"context"
	"testing"
)

func rootFromInts(t *testing.T, total int) func(ctx context.Context, rootChan chan<- int) error {
	t.Helper()

	return func(ctx context.Context, rootChan chan<- int) error {
		for i := 0; i < total; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case rootChan <- i:
			}
		}

		return nil
	}
}

func double(_ context.Context, input int) (int, error) {
	return input * 2, nil
}

func expectedDoubles(total int) []int {
	res := make([]int, total)
	for i := range res {
		res[i] = i * 2
	}

	return res
}
