package simulation

import "fmt"

// Two-pointer variant ids.
const (
	VariantOppositeDirection = "opposite_direction"
	VariantSameDirection     = "same_direction"
	VariantFastSlow          = "fast_slow"
	VariantPartition         = "partition"
)

// MaxCycleSteps bounds the fast/slow probe.
const MaxCycleSteps = 30

// oppositeDirection searches a sorted array for a pair summing to the target.
// One state is emitted per iteration, plus a closing state when the pair is
// found, so the trace never grows past len(arr).
func oppositeDirection(arr []int, p Params) []State {
	var states []State
	left, right := 0, len(arr)-1

	for left < right {
		sum := arr[left] + arr[right]
		st := State{
			Pointers:     leftRight(left, right),
			Array:        snapshot(arr),
			ConditionMet: sum == p.Target,
			CurrentSum:   intPtr(sum),
			Target:       intPtr(p.Target),
		}

		switch {
		case sum == p.Target:
			st.Explanation = fmt.Sprintf("Sum: %d + %d = %d. Target: %d.", arr[left], arr[right], sum, p.Target)
			states = append(states, st, State{
				Pointers:     leftRight(left, right),
				Array:        snapshot(arr),
				ConditionMet: true,
				CurrentSum:   intPtr(sum),
				Target:       intPtr(p.Target),
				Explanation:  fmt.Sprintf("FOUND! %d + %d = %d.", arr[left], arr[right], p.Target),
			})
			return states
		case sum < p.Target:
			st.Explanation = fmt.Sprintf("Sum: %d + %d = %d < %d. Too small, moving left pointer to increase the sum.",
				arr[left], arr[right], sum, p.Target)
			left++
		default:
			st.Explanation = fmt.Sprintf("Sum: %d + %d = %d > %d. Too large, moving right pointer to decrease the sum.",
				arr[left], arr[right], sum, p.Target)
			right--
		}
		states = append(states, st)
	}

	return states
}

// sameDirection compacts non-zero values to the front, keeping their order.
func sameDirection(arr []int, _ Params) []State {
	var states []State
	left := 0

	for right := 0; right < len(arr); right++ {
		states = append(states, State{
			Pointers:    leftRight(left, right),
			Array:       snapshot(arr),
			Explanation: fmt.Sprintf("Scanning index %d. Value: %d.", right, arr[right]),
		})

		if arr[right] == 0 {
			states = append(states, State{
				Pointers:    leftRight(left, right),
				Array:       snapshot(arr),
				Explanation: "Found zero. Expand the zero zone.",
			})
			continue
		}

		if right != left {
			states = append(states, State{
				Pointers:     leftRight(left, right),
				Array:        snapshot(arr),
				ConditionMet: true,
				SwapIndices:  pairPtr(left, right),
				Explanation:  fmt.Sprintf("Found non-zero %d. Swap with %d at the zero zone boundary.", arr[right], arr[left]),
			})
			arr[left], arr[right] = arr[right], arr[left]
			states = append(states, State{
				Pointers:     leftRight(left, right),
				Array:        snapshot(arr),
				ConditionMet: true,
				Explanation:  "Swapped. Boundary moves right.",
			})
		} else {
			states = append(states, State{
				Pointers:     leftRight(left, right),
				Array:        snapshot(arr),
				ConditionMet: true,
				Explanation:  "Non-zero already at the boundary. Boundary moves right.",
			})
		}
		left++
	}

	return states
}

// fastSlow walks a tortoise and a hare around a logical ring of len(arr)
// nodes until they meet or MaxCycleSteps is reached.
func fastSlow(arr []int, _ Params) []State {
	n := len(arr)
	if n == 0 {
		return nil
	}

	cyclePointers := func(slow, fast int) map[string]*int {
		return map[string]*int{"left": nil, "right": nil, "slow": intPtr(slow), "fast": intPtr(fast)}
	}

	if n == 1 {
		return []State{{
			Pointers:    cyclePointers(0, 0),
			Array:       snapshot(arr),
			HasCycle:    boolPtr(false),
			Explanation: "A ring needs at least two nodes. Nothing to probe.",
		}}
	}

	slow, fast := 0, 0
	states := []State{{
		Pointers:    cyclePointers(slow, fast),
		Array:       snapshot(arr),
		Explanation: "Tortoise (slow) and hare (fast) start at the beginning. Relative speed: 1 step per iteration.",
	}}

	for step := 0; step < MaxCycleSteps; step++ {
		slow = (slow + 1) % n
		fast = (fast + 2) % n
		met := slow == fast

		st := State{
			Pointers:     cyclePointers(slow, fast),
			Array:        snapshot(arr),
			ConditionMet: met,
			HasCycle:     boolPtr(met),
		}
		if met {
			st.Explanation = fmt.Sprintf("MATCH! Hare catches the tortoise at index %d. Cycle confirmed.", slow)
		} else {
			st.Explanation = fmt.Sprintf("Slow moves to %d, fast jumps to %d. Gap closing.", slow, fast)
		}
		states = append(states, st)

		if met {
			break
		}
	}

	return states
}

// partition runs the Lomuto scheme with the last element as pivot.
func partition(arr []int, _ Params) []State {
	n := len(arr)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []State{{
			Pointers:     leftRight(0, 0),
			Array:        snapshot(arr),
			ConditionMet: true,
			PivotIndex:   intPtr(0),
			Explanation:  "Single element. Already partitioned.",
		}}
	}

	pivotIdx := n - 1
	pivot := arr[pivotIdx]
	left := 0

	states := []State{{
		Pointers:    leftRight(0, 0),
		Array:       snapshot(arr),
		PivotIndex:  intPtr(pivotIdx),
		Explanation: fmt.Sprintf("Partitioning around pivot %d. Left tracks the boundary of smaller elements.", pivot),
	}}

	for right := 0; right < pivotIdx; right++ {
		smaller := arr[right] < pivot
		states = append(states, State{
			Pointers:     leftRight(left, right),
			Array:        snapshot(arr),
			ConditionMet: smaller,
			PivotIndex:   intPtr(pivotIdx),
			Explanation:  fmt.Sprintf("Comparing %d with pivot %d.", arr[right], pivot),
		})
		if !smaller {
			continue
		}

		states = append(states, State{
			Pointers:     leftRight(left, right),
			Array:        snapshot(arr),
			ConditionMet: true,
			PivotIndex:   intPtr(pivotIdx),
			SwapIndices:  pairPtr(left, right),
			Explanation:  fmt.Sprintf("%d < %d. Swap into the smaller zone.", arr[right], pivot),
		})
		arr[left], arr[right] = arr[right], arr[left]
		states = append(states, State{
			Pointers:     leftRight(left, right),
			Array:        snapshot(arr),
			ConditionMet: true,
			PivotIndex:   intPtr(pivotIdx),
			Explanation:  "Swapped. Increment the left boundary.",
		})
		left++
	}

	states = append(states, State{
		Pointers:     leftRight(left, pivotIdx),
		Array:        snapshot(arr),
		ConditionMet: true,
		PivotIndex:   intPtr(pivotIdx),
		SwapIndices:  pairPtr(left, pivotIdx),
		Explanation:  fmt.Sprintf("Scan complete. Swap pivot %d into its sorted position.", pivot),
	})
	arr[left], arr[pivotIdx] = arr[pivotIdx], arr[left]
	states = append(states, State{
		Pointers:     leftRight(left, left),
		Array:        snapshot(arr),
		ConditionMet: true,
		PivotIndex:   intPtr(left),
		Explanation:  fmt.Sprintf("Partition complete. Pivot is now at index %d.", left),
	})

	return states
}
