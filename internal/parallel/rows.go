// Package parallel splits per-pixel work across goroutines.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Workers returns n, or GOMAXPROCS when n <= 0.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ForRows calls fn once for every row in [0, height) using up to workers
// goroutines. Rows are handed out through a channel so slow rows do not
// stall a fixed band. It returns ctx.Err() if the context was cancelled
// before every row ran; rows already started always finish.
func ForRows(ctx context.Context, height, workers int, fn func(y int)) error {
	if height <= 0 {
		return ctx.Err()
	}
	workers = min(Workers(workers), height)

	if workers == 1 {
		for y := 0; y < height; y++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(y)
		}
		return nil
	}

	rows := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}

	var err error
feed:
	for y := 0; y < height; y++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case rows <- y:
		}
	}
	close(rows)
	wg.Wait()
	return err
}
