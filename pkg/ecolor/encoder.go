package ecolor

import(
	"context"
	"fmt"
	"runtime"
	"sync"
)

// An Encoder turns a linear float buffer into 8-bit sRGB. Implementations
// must give exactly the same per-element output as LinearToSRGB8; they
// only differ in how the work gets done.
type Encoder interface {
	LinearToSRGB8(ctx context.Context, in []float64) ([]uint8, error)
}

// ScalarEncoder runs in the calling goroutine.
type ScalarEncoder struct{}

func (ScalarEncoder)LinearToSRGB8(ctx context.Context, in []float64) ([]uint8, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LinearToSRGB8(in), nil
}

// ParallelEncoder splits the buffer into disjoint chunks and converts
// them across CPUs. It sets itself up on first use.
type ParallelEncoder struct {
	Workers   int // 0 means runtime.NumCPU()
	MinChunk  int // don't bother splitting below this many samples per worker

	once      sync.Once
	workers   int
	minChunk  int
}

func (pe *ParallelEncoder)init() {
	pe.workers = pe.Workers
	if pe.workers <= 0 {
		pe.workers = runtime.NumCPU()
	}
	pe.minChunk = pe.MinChunk
	if pe.minChunk <= 0 {
		pe.minChunk = 1 << 14
	}
}

func (pe *ParallelEncoder)String() string {
	pe.once.Do(pe.init)
	return fmt.Sprintf("ParallelEncoder[workers=%d, minchunk=%d]", pe.workers, pe.minChunk)
}

func (pe *ParallelEncoder)LinearToSRGB8(ctx context.Context, in []float64) ([]uint8, error) {
	pe.once.Do(pe.init)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]uint8, len(in))

	n := pe.workers
	if max := (len(in) + pe.minChunk - 1) / pe.minChunk; max < n {
		n = max
	}
	if n <= 1 {
		for i, v := range in {
			out[i] = ToSRGB8(v)
		}
		return out, nil
	}

	chunk := (len(in) + n - 1) / n
	var wg sync.WaitGroup
	for start:=0; start<len(in); start+=chunk {
		end := start + chunk
		if end > len(in) { end = len(in) }

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i:=start; i<end; i++ {
				out[i] = ToSRGB8(in[i])
			}
		}(start, end)
	}
	wg.Wait()

	return out, ctx.Err()
}
