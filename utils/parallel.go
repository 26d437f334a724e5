package utils

import (
	"runtime"

	"github.com/pkg/errors"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// WorkRange is the half open range [From, To) of work items given to one worker.
type WorkRange struct {
	From, To int
}

// Len returns the number of work items in the range.
func (r WorkRange) Len() int {
	return r.To - r.From
}

// SplitWork divides totalSize work items into parts contiguous ranges, in order. Sizes differ by at
// most one, the earlier ranges being the larger.
func SplitWork(totalSize, parts int) []WorkRange {
	if parts <= 0 || totalSize < 0 {
		return nil
	}
	groupSize, extra := totalSize/parts, totalSize%parts
	ranges := make([]WorkRange, parts)
	from := 0
	for i := range ranges {
		to := from + groupSize
		if i < extra {
			to++
		}
		ranges[i] = WorkRange{From: from, To: to}
		from = to
	}
	return ranges
}

// RecoverAsError runs f, returning its error or the panic it raised as an error.
func RecoverAsError(f func() error) (err error) {
	defer func() {
		if thePanic := recover(); thePanic != nil {
			err = errors.Errorf("got panic running something in parallel: %v", thePanic)
		}
	}()
	return f()
}
