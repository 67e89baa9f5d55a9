package simulation

import "fmt"

// Search variant ids.
const (
	VariantBinarySearch = "binary_search"
	VariantLowerBound   = "lower_bound"
	VariantUpperBound   = "upper_bound"
	VariantLinearSearch = "linear_search"
)

// Search phases.
const (
	PhaseCalculateMid = "calculate_mid"
	PhaseCompare      = "compare"
	PhaseEliminate    = "eliminate"
	PhaseFound        = "found"
	PhaseNotFound     = "not_found"
	PhaseSearching    = "searching"
)

func rangeState(arr []int, low, high, mid int, target int, phase string) State {
	ptrs := map[string]*int{"low": intPtr(low), "high": intPtr(high), "mid": nil}
	if mid >= 0 {
		ptrs["mid"] = intPtr(mid)
	}
	return State{
		Pointers:    ptrs,
		Array:       snapshot(arr),
		Target:      intPtr(target),
		ActiveRange: pairPtr(low, high),
		Phase:       phase,
	}
}

// binarySearch is the classic closed-interval search.
func binarySearch(arr []int, p Params) []State {
	target := p.Target
	var states []State
	low, high := 0, len(arr)-1

	for low <= high {
		st := rangeState(arr, low, high, -1, target, PhaseCalculateMid)
		st.Explanation = fmt.Sprintf("Searching range [%d, %d].", low, high)
		states = append(states, st)

		mid := low + (high-low)/2
		midVal := arr[mid]
		st = rangeState(arr, low, high, mid, target, PhaseCompare)
		st.Explanation = fmt.Sprintf("Mid index: %d, value: %d. Comparing with target %d.", mid, midVal, target)
		states = append(states, st)

		switch {
		case midVal == target:
			st = rangeState(arr, low, high, mid, target, PhaseFound)
			st.ConditionMet = true
			st.FoundIndex = intPtr(mid)
			st.Explanation = fmt.Sprintf("Found target %d at index %d.", target, mid)
			return append(states, st)
		case midVal < target:
			st = rangeState(arr, low, high, mid, target, PhaseEliminate)
			st.Explanation = fmt.Sprintf("%d < %d. Target is in the right half. Eliminate [%d...%d].", midVal, target, low, mid)
			low = mid + 1
		default:
			st = rangeState(arr, low, high, mid, target, PhaseEliminate)
			st.Explanation = fmt.Sprintf("%d > %d. Target is in the left half. Eliminate [%d...%d].", midVal, target, mid, high)
			high = mid - 1
		}
		states = append(states, st)
	}

	st := rangeState(arr, low, high, -1, target, PhaseNotFound)
	st.Explanation = fmt.Sprintf("Low (%d) > high (%d). Target not found.", low, high)
	return append(states, st)
}

func lowerBound(arr []int, p Params) []State {
	return boundSearch(arr, p.Target, false)
}

func upperBound(arr []int, p Params) []State {
	return boundSearch(arr, p.Target, true)
}

// boundSearch finds the first index whose value is >= target, or > target
// when strict is set, over the half-open range [0, n).
func boundSearch(arr []int, target int, strict bool) []State {
	var states []State
	low, high := 0, len(arr)
	ans := len(arr)

	name, rel := "Lower bound", ">="
	if strict {
		name, rel = "Upper bound", ">"
	}

	for low < high {
		st := rangeState(arr, low, high, -1, target, PhaseCalculateMid)
		st.Explanation = fmt.Sprintf("%s search: finding first element %s %d in [%d, %d).", name, rel, target, low, high)
		states = append(states, st)

		mid := low + (high-low)/2
		midVal := arr[mid]
		st = rangeState(arr, low, high, mid, target, PhaseCompare)
		st.Explanation = fmt.Sprintf("Mid %d (%d) compared with %d.", mid, midVal, target)
		states = append(states, st)

		candidate := midVal >= target
		if strict {
			candidate = midVal > target
		}

		st = rangeState(arr, low, high, mid, target, PhaseEliminate)
		if candidate {
			ans = mid
			st.ConditionMet = true
			st.Explanation = fmt.Sprintf("%d %s %d. Possible answer, try the left half for a smaller index.", midVal, rel, target)
			high = mid
		} else {
			st.Explanation = fmt.Sprintf("%d is too small. Answer must be to the right.", midVal)
			low = mid + 1
		}
		states = append(states, st)
	}

	value := "end"
	if ans < len(arr) {
		value = fmt.Sprint(arr[ans])
	}
	st := rangeState(arr, low, high, -1, target, PhaseFound)
	st.ConditionMet = true
	st.FoundIndex = intPtr(ans)
	st.Explanation = fmt.Sprintf("%s is index %d (value: %s).", name, ans, value)
	return append(states, st)
}

// linearSearch compares every element in order until the target is found.
func linearSearch(arr []int, p Params) []State {
	target := p.Target
	var states []State

	for i, v := range arr {
		states = append(states, State{
			Pointers:    map[string]*int{"current": intPtr(i)},
			Array:       snapshot(arr),
			Target:      intPtr(target),
			Phase:       PhaseSearching,
			Explanation: fmt.Sprintf("Comparing index %d (value: %d) with target %d.", i, v, target),
		})
		if v == target {
			return append(states, State{
				Pointers:     map[string]*int{"current": intPtr(i)},
				Array:        snapshot(arr),
				Target:       intPtr(target),
				ConditionMet: true,
				FoundIndex:   intPtr(i),
				Phase:        PhaseFound,
				Explanation:  fmt.Sprintf("Found target %d at index %d.", target, i),
			})
		}
	}

	return append(states, State{
		Pointers:    map[string]*int{"current": intPtr(len(arr))},
		Array:       snapshot(arr),
		Target:      intPtr(target),
		Phase:       PhaseNotFound,
		Explanation: fmt.Sprintf("Target %d not found in array.", target),
	})
}
