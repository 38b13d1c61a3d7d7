// Package rowblock implements RowBlockRunner: a parallel map over contiguous
// row blocks with in-order-agnostic reassembly into a destination grid. It
// is the shared concurrency primitive behind both the EPF and LFO cores.
package rowblock

import (
	"errors"
	"runtime"

	"github.com/alitto/pond"
)

// ErrWorkerFailed wraps the first error returned by any row computation.
// A worker failure is fatal to the whole run: Run returns an error, and any
// rows already passed to the sink before the failure was observed are not
// valid output.
var ErrWorkerFailed = errors.New("rowblock: worker failed")

// Compute produces the payload for a single row.
type Compute[Payload any] func(row int) (Payload, error)

// Sink writes one row's payload into the destination. Sink is only ever
// invoked on the calling goroutine, never concurrently, so it may freely
// mutate a shared destination grid.
type Sink[Payload any] func(row int, payload Payload)

type rowResult[Payload any] struct {
	row     int
	payload Payload
	err     error
}

// Run partitions [0, rows) into contiguous blocks of size ceil(rows/workers),
// computes each row's payload via f on a pond worker pool, and invokes sink
// for each of the rows results on the calling goroutine. Every row is
// visited exactly once; arrival order across blocks is unspecified, which is
// why sink takes an explicit row index. Once a row in a block fails, the
// remaining rows of that block are not recomputed but are still reported (as
// failures) so the collector always receives exactly `rows` messages. If any
// row failed, sink stops being invoked as soon as the failure is observed and
// Run returns the first error wrapped in ErrWorkerFailed; the caller must
// treat the destination as not holding valid output.
//
// workers <= 0 defaults to runtime.NumCPU().
func Run[Payload any](rows, workers int, f Compute[Payload], sink Sink[Payload]) error {
	if rows <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > rows {
		workers = rows
	}

	blockSize := (rows + workers - 1) / workers
	results := make(chan rowResult[Payload], rows)

	pool := pond.New(workers, 0, pond.MinWorkers(workers))

	for start := 0; start < rows; start += blockSize {
		end := start + blockSize
		if end > rows {
			end = rows
		}
		s, e := start, end
		pool.Submit(func() {
			var blockErr error
			for row := s; row < e; row++ {
				if blockErr != nil {
					// A prior row in this block already failed; keep the
					// message count exactly `rows` without recomputing.
					results <- rowResult[Payload]{row: row, err: blockErr}
					continue
				}
				payload, err := f(row)
				if err != nil {
					blockErr = err
					results <- rowResult[Payload]{row: row, err: err}
					continue
				}
				results <- rowResult[Payload]{row: row, payload: payload}
			}
		})
	}

	var firstErr error
	for i := 0; i < rows; i++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		if firstErr == nil {
			sink(res.row, res.payload)
		}
	}

	pool.StopAndWait()

	if firstErr != nil {
		return errors.Join(ErrWorkerFailed, firstErr)
	}
	return nil
}
