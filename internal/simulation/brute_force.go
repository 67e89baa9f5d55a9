package simulation

import "fmt"

// Brute-force comparator ids.
const (
	VariantPairSumBrute   = "pair_sum_brute"
	VariantContainerBrute = "container_brute"
)

func pairPointers(i, j int) map[string]*int {
	if i < 0 {
		return map[string]*int{"i": nil, "j": nil}
	}
	return map[string]*int{"i": intPtr(i), "j": intPtr(j)}
}

// pairSumBrute checks every pair i < j until one sums to the target.
func pairSumBrute(arr []int, p Params) []State {
	var states []State
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			sum := arr[i] + arr[j]
			states = append(states, State{
				Pointers:     pairPointers(i, j),
				Array:        snapshot(arr),
				ConditionMet: sum == p.Target,
				CurrentSum:   intPtr(sum),
				Target:       intPtr(p.Target),
				Explanation:  fmt.Sprintf("Checking pair (%d, %d). Sum: %d.", arr[i], arr[j], sum),
			})
			if sum == p.Target {
				return states
			}
		}
	}
	return states
}

// containerBrute measures the area of every pair of walls.
func containerBrute(arr []int, _ Params) []State {
	var states []State
	maxArea := 0
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			h := min(arr[i], arr[j])
			area := h * (j - i)
			maxArea = max(maxArea, area)
			states = append(states, State{
				Pointers:    pairPointers(i, j),
				Array:       snapshot(arr),
				Area:        intPtr(area),
				Explanation: fmt.Sprintf("Height: %d, width: %d, area: %d. Max: %d.", h, j-i, area, maxArea),
			})
		}
	}

	return append(states, State{
		Pointers:     pairPointers(-1, -1),
		Array:        snapshot(arr),
		Area:         intPtr(maxArea),
		ConditionMet: true,
		Explanation:  fmt.Sprintf("Max area found: %d.", maxArea),
	})
}
