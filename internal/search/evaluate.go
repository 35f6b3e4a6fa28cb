package search

import (
	"context"
	"io"

	"github.com/lgbarn/pgn-scan/internal/chess"
	"github.com/lgbarn/pgn-scan/internal/worker"
)

// GameSource yields games until io.EOF. *reader.GameReader implements it.
type GameSource interface {
	Next(ctx context.Context) (*chess.Game, error)
}

// visitFunc receives each game in input order with the criterion's verdict
// and reports whether the walk should stop.
type visitFunc func(g *chess.Game, matched bool) (stop bool, err error)

// evaluate reads src to the end, or until visit asks to stop, applying
// crit to every game. With more than one worker the criterion runs on a
// worker pool while visit still sees games in input order. It returns the
// number of games passed to visit.
func evaluate(ctx context.Context, src GameSource, crit Criterion, workers int, visit visitFunc) (int, error) {
	if workers <= 1 {
		return evaluateSequential(ctx, src, crit, visit)
	}
	return evaluateParallel(ctx, src, crit, workers, visit)
}

func evaluateSequential(ctx context.Context, src GameSource, crit Criterion, visit visitFunc) (int, error) {
	processed := 0
	for {
		g, err := src.Next(ctx)
		if err == io.EOF {
			return processed, nil
		}
		if err != nil {
			return processed, err
		}

		processed++
		stop, err := visit(g, crit(g))
		if err != nil || stop {
			return processed, err
		}
	}
}

func evaluateParallel(ctx context.Context, src GameSource, crit Criterion, workers int, visit visitFunc) (int, error) {
	pool := worker.NewPool(worker.Predicate(crit),
		worker.WithWorkers(workers),
		worker.WithBufferSize(4*workers),
	)
	pool.Start()

	// processed and stopped are owned by the consumer goroutine until
	// consumed is closed.
	processed := 0
	stopped := false
	consumed := make(chan error, 1)
	go func() {
		consumed <- worker.Ordered(pool.Results(), func(r worker.Result) error {
			if stopped {
				return nil
			}
			processed++
			stop, err := visit(r.Game, r.Matched)
			if err != nil || stop {
				stopped = true
				pool.Stop()
			}
			return err
		})
	}()

	var readErr error
	for index := 0; !pool.IsStopped(); index++ {
		g, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		pool.Submit(worker.WorkItem{Game: g, Index: index})
	}

	pool.Close()
	visitErr := <-consumed

	if visitErr != nil {
		return processed, visitErr
	}
	return processed, readErr
}
