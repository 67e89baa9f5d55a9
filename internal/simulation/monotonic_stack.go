package simulation

import "fmt"

// Monotonic stack variant ids.
const (
	VariantNextGreater       = "next_greater"
	VariantNextSmaller       = "next_smaller"
	VariantDailyTemperatures = "daily_temperatures"
)

// Monotonic stack phases.
const (
	PhaseScan     = "scan"
	PhasePop      = "pop"
	PhasePush     = "push"
	PhaseFinished = "finished"
)

// monotonicStack scans left to right keeping a stack of indices still waiting
// for their answer. Result entries default to -1. For daily temperatures the
// result holds the distance in days instead of the value.
func monotonicStack(arr []int, mode string) []State {
	n := len(arr)
	result := make([]int, n)
	for i := range result {
		result[i] = -1
	}
	var stack []int
	var states []State

	greater := mode != VariantNextSmaller
	word := "greater"
	if !greater {
		word = "smaller"
	}

	emit := func(current int, phase, explanation string, top int) {
		ptrs := map[string]*int{"current": intPtr(current), "top": nil}
		if top >= 0 {
			ptrs["top"] = intPtr(top)
		}
		states = append(states, State{
			Pointers:     ptrs,
			Array:        snapshot(arr),
			Stack:        append([]int{}, stack...),
			Result:       snapshot(result),
			ConditionMet: phase == PhasePop,
			Phase:        phase,
			Explanation:  explanation,
		})
	}

	for i := 0; i < n; i++ {
		emit(i, PhaseScan, fmt.Sprintf("Processing index %d (value: %d).", i, arr[i]), -1)

		for len(stack) > 0 {
			topIdx := stack[len(stack)-1]
			topVal, cur := arr[topIdx], arr[i]
			emit(i, PhaseCompare, fmt.Sprintf("Comparing current %d with stack top %d (index %d).", cur, topVal, topIdx), topIdx)

			pop := cur > topVal
			if !greater {
				pop = cur < topVal
			}
			if !pop {
				emit(i, PhaseCompare, fmt.Sprintf("%d is not %s than %d. Stop popping.", cur, word, topVal), topIdx)
				break
			}

			if mode == VariantDailyTemperatures {
				result[topIdx] = i - topIdx
			} else {
				result[topIdx] = cur
			}
			stack = stack[:len(stack)-1]
			emit(i, PhasePop, fmt.Sprintf("%d is %s than %d. Pop index %d and record its answer.", cur, word, topVal, topIdx), topIdx)
		}

		stack = append(stack, i)
		emit(i, PhasePush, fmt.Sprintf("Push index %d to stack.", i), -1)
	}

	emit(n, PhaseFinished, "Traversal complete. Indices left on the stack have no answer.", -1)
	return states
}
