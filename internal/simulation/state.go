package simulation

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedVariant is returned for variant ids with no generator.
var ErrUnsupportedVariant = errors.New("unsupported variant")

// Params holds the variant-specific inputs. Target is used by the pair sum,
// search and variable window variants, K by the fixed and distinct windows.
type Params struct {
	Target int `json:"target"`
	K      int `json:"k"`
}

// State is one snapshot of a simulation. A state is never modified once it
// has been appended to a trace: every slice and pointer it holds is its own.
type State struct {
	Pointers     map[string]*int `json:"pointers"`
	Array        []int           `json:"array"`
	ConditionMet bool            `json:"conditionMet"`
	Explanation  string          `json:"explanation"`

	CurrentSum  *int    `json:"currentSum,omitempty"`
	Target      *int    `json:"target,omitempty"`
	HasCycle    *bool   `json:"hasCycle,omitempty"`
	SwapIndices *[2]int `json:"swapIndices,omitempty"`
	PivotIndex  *int    `json:"pivotIndex,omitempty"`

	WindowSize        *int `json:"windowSize,omitempty"`
	CurrentValue      *int `json:"currentValue,omitempty"`
	Contribution      *int `json:"currentContribution,omitempty"`
	TotalContribution *int `json:"totalContribution,omitempty"`

	FoundIndex  *int    `json:"foundIndex,omitempty"`
	ActiveRange *[2]int `json:"activeRange,omitempty"`
	Phase       string  `json:"phase,omitempty"`
	Stack       []int   `json:"stack,omitempty"`
	Result      []int   `json:"result,omitempty"`
	Area        *int    `json:"area,omitempty"`
}

// Trace is the full, ordered output of one generator invocation.
type Trace struct {
	Variant string  `json:"variant"`
	Steps   []State `json:"steps"`
}

// Len returns the number of steps.
func (t Trace) Len() int {
	return len(t.Steps)
}

// Last returns the final step, or false for an empty trace.
func (t Trace) Last() (State, bool) {
	if len(t.Steps) == 0 {
		return State{}, false
	}
	return t.Steps[len(t.Steps)-1], true
}

// generatorFunc receives a working copy it owns exclusively and may mutate.
type generatorFunc func(work []int, p Params) []State

var generators = map[string]generatorFunc{
	VariantOppositeDirection: oppositeDirection,
	VariantSameDirection:     sameDirection,
	VariantFastSlow:          fastSlow,
	VariantPartition:         partition,

	VariantFixedWindow:    fixedWindow,
	VariantVariableWindow: variableWindow,
	VariantAtMostK:        func(work []int, p Params) []State { return atMostK(work, windowK(p)) },
	VariantExactK:         exactK,

	VariantBinarySearch: binarySearch,
	VariantLowerBound:   lowerBound,
	VariantUpperBound:   upperBound,
	VariantLinearSearch: linearSearch,

	VariantNextGreater:       func(work []int, _ Params) []State { return monotonicStack(work, VariantNextGreater) },
	VariantNextSmaller:       func(work []int, _ Params) []State { return monotonicStack(work, VariantNextSmaller) },
	VariantDailyTemperatures: func(work []int, _ Params) []State { return monotonicStack(work, VariantDailyTemperatures) },

	VariantPairSumBrute:   pairSumBrute,
	VariantContainerBrute: containerBrute,
}

// Generate runs the named variant over a copy of initial. The caller's slice
// is never modified. An unknown variant yields an empty trace together with
// ErrUnsupportedVariant.
func Generate(variant string, initial []int, params Params) (Trace, error) {
	gen, ok := generators[variant]
	if !ok {
		return Trace{Variant: variant, Steps: []State{}}, fmt.Errorf("%w: %q", ErrUnsupportedVariant, variant)
	}

	steps := gen(snapshot(initial), params)
	if steps == nil {
		steps = []State{}
	}
	return Trace{Variant: variant, Steps: steps}, nil
}

// Supported reports whether a generator exists for variant.
func Supported(variant string) bool {
	_, ok := generators[variant]
	return ok
}

// Variants returns every supported variant id in sorted order.
func Variants() []string {
	ids := make([]string, 0, len(generators))
	for id := range generators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func snapshot(arr []int) []int {
	out := make([]int, len(arr))
	copy(out, arr)
	return out
}

func intPtr(v int) *int {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func pairPtr(a, b int) *[2]int {
	return &[2]int{a, b}
}

// leftRight is the pointer map shared by most two-pointer states.
func leftRight(left, right int) map[string]*int {
	return map[string]*int{"left": intPtr(left), "right": intPtr(right)}
}
