package utils

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrSampleTooLarge is returned when more unique indices are requested than the population holds.
var ErrSampleTooLarge = errors.New("sample size exceeds population size")

// Seed is the state of the deterministic sampling generator. It is owned by the caller and
// threaded explicitly through successive sampling calls.
type Seed uint64

// DefaultSeed is the seed used when the caller does not supply one.
const DefaultSeed Seed = 1

// NextSeed advances the seed by one step of the splitmix64 sequence and returns the advanced
// state along with the 64 bit output for that step.
func NextSeed(seed Seed) (Seed, uint64) {
	next := seed + 0x9e3779b97f4a7c15
	z := uint64(next)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return next, z ^ (z >> 31)
}

// SplitSeeds derives n independent seeds from successive outputs of the sequence started at seed.
// It returns the derived seeds and the advanced caller seed.
func SplitSeeds(seed Seed, n int) ([]Seed, Seed) {
	seeds := make([]Seed, n)
	for i := range seeds {
		var out uint64
		seed, out = NextSeed(seed)
		seeds[i] = Seed(out)
	}
	return seeds, seed
}

// uniformIndex maps a 64 bit output onto [0, n) with a multiply-shift.
func uniformIndex(v uint64, n int) int {
	hi, _ := bits.Mul64(v, uint64(n))
	return int(hi)
}

// RandomSample fills indices with size unique indices drawn from [0, population) and returns
// them together with the advanced seed. indices is reused when it has enough capacity.
// The same seed always yields the same sample in the same order.
func RandomSample(indices []int, population, size int, seed Seed) ([]int, Seed, error) {
	if size < 0 || population < 0 {
		return nil, seed, errors.Errorf("invalid sample request: %d of %d", size, population)
	}
	if size > population {
		return nil, seed, errors.Wrapf(ErrSampleTooLarge, "%d > %d", size, population)
	}
	if cap(indices) < size {
		indices = make([]int, size)
	}
	indices = indices[:size]
	for i := 0; i < size; i++ {
		for {
			var out uint64
			seed, out = NextSeed(seed)
			candidate := uniformIndex(out, population)
			if !containsIndex(indices[:i], candidate) {
				indices[i] = candidate
				break
			}
		}
	}
	return indices, seed, nil
}

func containsIndex(indices []int, idx int) bool {
	for _, v := range indices {
		if v == idx {
			return true
		}
	}
	return false
}
