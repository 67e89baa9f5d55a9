package simulation

import (
	"math/rand"
	"sort"
)

// DefaultSampleSize is used when SampleInput is asked for a non-positive size.
const DefaultSampleSize = 8

// SampleInput builds a demo array suited to variant. The caller owns the
// random source, so a seeded source always yields the same array.
func SampleInput(rng *rand.Rand, variant string, size int) []int {
	if size <= 0 {
		size = DefaultSampleSize
	}

	out := make([]int, size)
	switch variant {
	case VariantSameDirection:
		// roughly a third zeros so the compaction has work to do
		for i := range out {
			if rng.Intn(3) == 0 {
				continue
			}
			out[i] = rng.Intn(9) + 1
		}
	case VariantAtMostK, VariantExactK:
		for i := range out {
			out[i] = rng.Intn(5) + 1
		}
	default:
		for i := range out {
			out[i] = rng.Intn(20) + 1
		}
	}

	if needsSorted(variant) {
		sort.Ints(out)
	}
	return out
}

// SampleTarget picks a target that is reachable for pair sum and search
// variants about half of the time.
func SampleTarget(rng *rand.Rand, variant string, arr []int) int {
	if len(arr) == 0 {
		return 0
	}
	switch variant {
	case VariantOppositeDirection, VariantPairSumBrute:
		if len(arr) >= 2 && rng.Intn(2) == 0 {
			i := rng.Intn(len(arr) - 1)
			j := i + 1 + rng.Intn(len(arr)-i-1)
			return arr[i] + arr[j]
		}
		return rng.Intn(40) + 1
	case VariantVariableWindow:
		return rng.Intn(30) + 5
	default:
		if rng.Intn(2) == 0 {
			return arr[rng.Intn(len(arr))]
		}
		return rng.Intn(21)
	}
}

func needsSorted(variant string) bool {
	switch variant {
	case VariantOppositeDirection, VariantPairSumBrute,
		VariantBinarySearch, VariantLowerBound, VariantUpperBound:
		return true
	}
	return false
}
