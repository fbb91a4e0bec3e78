// Package dice provides the randomness abstraction, the dice formula grammar
// and the evaluated roll results used by checks, damage and spells.
package dice

import (
	"fmt"
	"math"
	"strings"
)

// Term is the breakdown of a single NdS term, in evaluation order.
//
// Invariant: len(Results) == Count and every result is in [1, Sides].
type Term struct {
	Count   int
	Sides   int
	Results []int
}

// Sum returns the sum of the individual die results.
func (t Term) Sum() int {
	total := 0
	for _, r := range t.Results {
		total += r
	}
	return total
}

// Result holds the full audit trail of one formula evaluation.
type Result struct {
	// Formula is the expression as submitted, e.g. "2d6 + @attr".
	Formula string
	// Total is the fully reduced arithmetic result; fractional when the formula divides.
	Total float64
	// Dice lists every dice term in the order it was rolled.
	Dice []Term
}

// Natural returns the sum of the first dice term, or 0 when no dice were rolled.
//
// For a check rolled as "2d6 + ..." this is the natural roll.
func (r Result) Natural() int {
	if len(r.Dice) == 0 {
		return 0
	}
	return r.Dice[0].Sum()
}

// IntTotal returns Total rounded to the nearest integer.
func (r Result) IntTotal() int {
	return int(math.Round(r.Total))
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] = 12"
//
// Precondition: r.Formula is non-empty.
func (r Result) String() string {
	if r.Formula == "" {
		panic("dice: Result.String() precondition violated: Formula must be non-empty")
	}
	parts := make([]string, 0, len(r.Dice))
	for _, t := range r.Dice {
		parts = append(parts, fmt.Sprintf("%v", t.Results))
	}
	return fmt.Sprintf("%s → %s = %s", r.Formula, strings.Join(parts, " "), FormatNumber(r.Total))
}

// FormatNumber renders integral values without a decimal part and everything
// else with at most two decimals.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
