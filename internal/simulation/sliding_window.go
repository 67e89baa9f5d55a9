package simulation

import "fmt"

// Sliding window variant ids.
const (
	VariantFixedWindow    = "fixed_window"
	VariantVariableWindow = "variable_window"
	VariantAtMostK        = "at_most_k"
	VariantExactK         = "exact_k"
)

// DefaultWindowK is used when Params.K is not positive.
const DefaultWindowK = 3

func windowK(p Params) int {
	if p.K <= 0 {
		return DefaultWindowK
	}
	return p.K
}

func windowState(arr []int, left, right int) State {
	return State{
		Pointers:   leftRight(left, right),
		Array:      snapshot(arr),
		WindowSize: intPtr(right - left + 1),
	}
}

func fixedWindow(arr []int, p Params) []State {
	k := windowK(p)
	var states []State
	left, sum := 0, 0

	for right := 0; right < len(arr); right++ {
		sum += arr[right]
		st := windowState(arr, left, right)
		st.CurrentValue = intPtr(sum)

		if right-left+1 == k {
			st.ConditionMet = true
			st.Explanation = fmt.Sprintf("Window size reached %d. Current sum: %d.", k, sum)
			states = append(states, st)
			sum -= arr[left]
			left++
			continue
		}
		st.Explanation = fmt.Sprintf("Expanding to reach size %d.", k)
		states = append(states, st)
	}

	return states
}

// variableWindow finds the shortest windows whose sum reaches the target.
func variableWindow(arr []int, p Params) []State {
	target := p.Target
	var states []State
	left, sum := 0, 0

	for right := 0; right < len(arr); right++ {
		sum += arr[right]
		st := windowState(arr, left, right)
		st.CurrentValue = intPtr(sum)
		st.ConditionMet = sum >= target
		st.Explanation = fmt.Sprintf("Added %d. Sum: %d. Target: %d.", arr[right], sum, target)
		states = append(states, st)

		for left <= right && sum >= target {
			st := windowState(arr, left, right)
			st.CurrentValue = intPtr(sum)
			st.ConditionMet = true
			st.Explanation = fmt.Sprintf("Sum %d >= %d. Valid window of length %d. Shrinking.", sum, target, right-left+1)
			states = append(states, st)
			sum -= arr[left]
			left++
		}

		st = windowState(arr, left, right)
		st.CurrentValue = intPtr(sum)
		st.Explanation = fmt.Sprintf("Sum %d < %d. Need more elements.", sum, target)
		states = append(states, st)
	}

	return states
}

// atMostK counts subarrays with at most k distinct values. Every window end
// produces one contribution state carrying right-left+1.
func atMostK(arr []int, k int) []State {
	var states []State
	freq := make(map[int]int)
	left, total := 0, 0

	for right := 0; right < len(arr); right++ {
		num := arr[right]
		freq[num]++

		st := windowState(arr, left, right)
		st.CurrentValue = intPtr(len(freq))
		st.ConditionMet = len(freq) <= k
		st.Explanation = fmt.Sprintf("Added %d. Distinct count: %d.", num, len(freq))
		states = append(states, st)

		for left <= right && len(freq) > k {
			removed := arr[left]
			freq[removed]--
			if freq[removed] == 0 {
				delete(freq, removed)
			}

			st := windowState(arr, left, right)
			st.CurrentValue = intPtr(len(freq))
			st.ConditionMet = len(freq) <= k
			st.Explanation = fmt.Sprintf("Distinct %d > %d. Shrinking, removed %d.", len(freq)+1, k, removed)
			states = append(states, st)
			left++
		}

		count := right - left + 1
		total += count
		st = windowState(arr, left, right)
		st.CurrentValue = intPtr(len(freq))
		st.ConditionMet = true
		st.Contribution = intPtr(count)
		st.TotalContribution = intPtr(total)
		st.Explanation = fmt.Sprintf("Valid window [%d...%d] with %d distinct. Adds +%d subarrays.", left, right, len(freq), count)
		states = append(states, st)
	}

	return states
}

// exactK replays atMostK(k) and rewrites each contribution as
// atMost(k) - atMost(k-1) for the same window end.
func exactK(arr []int, p Params) []State {
	k := windowK(p)
	statesK := atMostK(arr, k)
	statesBelow := atMostK(arr, k-1)

	below := make(map[int]int)
	for _, s := range statesBelow {
		if s.Contribution != nil {
			below[*s.Pointers["right"]] = *s.Contribution
		}
	}

	total := 0
	out := make([]State, 0, len(statesK))
	for _, s := range statesK {
		if s.Contribution == nil {
			s.Explanation = fmt.Sprintf("%s (Simulating AtMost(%d))", s.Explanation, k)
			out = append(out, s)
			continue
		}

		countK := *s.Contribution
		countBelow := below[*s.Pointers["right"]]
		net := countK - countBelow
		total += net

		s.Contribution = intPtr(net)
		s.TotalContribution = intPtr(total)
		s.Explanation = fmt.Sprintf("AtMost(%d): %d - AtMost(%d): %d = %d exact subarrays.", k, countK, k-1, countBelow, net)
		out = append(out, s)
	}

	return out
}
