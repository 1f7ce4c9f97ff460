// Package portfolio computes risk and performance metrics for weighted
// baskets of symbols and backtests them against history.
package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrBadAllocation marks a basket whose weights do not sum to 100%.
var ErrBadAllocation = errors.New("allocation weights must sum to 100")

// Allocation is one constituent of the basket. Weight is a percentage.
type Allocation struct {
	Symbol   string  `json:"symbol"`
	Weight   float64 `json:"weight"`
	Category string  `json:"category,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
}

type Allocations []Allocation

// weightSumTolerance absorbs rounded template weights like 33.3/33.3/33.4.
var weightSumTolerance = decimal.NewFromFloat(0.5)

// Validate checks that the basket is non-empty, every weight is positive
// and the weights sum to 100 within tolerance. The sum check runs in
// decimal so accumulated float error cannot push a valid basket over the
// line.
func (a Allocations) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: empty basket", ErrBadAllocation)
	}
	sum := decimal.Zero
	for _, alloc := range a {
		if alloc.Symbol == "" {
			return fmt.Errorf("%w: allocation without symbol", ErrBadAllocation)
		}
		if alloc.Weight <= 0 {
			return fmt.Errorf("%w: %s weight %.2f", ErrBadAllocation, alloc.Symbol, alloc.Weight)
		}
		sum = sum.Add(decimal.NewFromFloat(alloc.Weight))
	}
	if sum.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(weightSumTolerance) {
		return fmt.Errorf("%w: got %s", ErrBadAllocation, sum)
	}
	return nil
}

// Symbols lists the basket's symbols in order.
func (a Allocations) Symbols() []string {
	out := make([]string, len(a))
	for i, alloc := range a {
		out[i] = alloc.Symbol
	}
	return out
}

// fractions converts percentage weights to fractional ones.
func (a Allocations) fractions() []float64 {
	out := make([]float64, len(a))
	for i, alloc := range a {
		out[i] = alloc.Weight / 100
	}
	return out
}

// WithAmounts returns a copy with each allocation's cash amount filled in
// from the total investment.
func (a Allocations) WithAmounts(total float64) Allocations {
	out := make(Allocations, len(a))
	for i, alloc := range a {
		alloc.Amount = total * alloc.Weight / 100
		out[i] = alloc
	}
	return out
}
