// Package quantity computes order quantities in tons across the two ways a
// line item can be specified: directly in tons, or as a bag count times a
// bag weight in kilograms. All arithmetic runs on decimals so that repeated
// reconciliation never drifts.
package quantity

import (
	"github.com/shopspring/decimal"

	"millops-backend/internal/model"
)

// Epsilon is the tolerance, in tons, used when comparing dispatched against
// ordered quantities.
const Epsilon = 0.0001

// BagToleranceKg is the maximum allowed deviation between a stated tonnage
// and its bag-count times bag-weight equivalent.
const BagToleranceKg = 50.0

var (
	kgPerTon  = decimal.NewFromInt(1000)
	epsilon   = decimal.NewFromFloat(Epsilon)
	bagTolKg  = decimal.NewFromFloat(BagToleranceKg)
)

// OrderedTons returns the ordered quantity of an item in tons.
// QuantityTon wins when set and positive; otherwise bags × bag weight is
// used, with the weight taken from the referenced BagSize or the ad-hoc
// override; otherwise zero.
func OrderedTons(item *model.OrderItem) float64 {
	if item.QuantityTon != nil && *item.QuantityTon > 0 {
		return *item.QuantityTon
	}

	if item.NumberOfBags != nil && *item.NumberOfBags > 0 {
		weightKg := bagWeightKg(item)
		if weightKg > 0 {
			bags := decimal.NewFromInt(int64(*item.NumberOfBags))
			tons := bags.Mul(decimal.NewFromFloat(weightKg)).Div(kgPerTon)
			f, _ := tons.Float64()
			return f
		}
	}

	return 0
}

func bagWeightKg(item *model.OrderItem) float64 {
	if item.BagSize != nil && item.BagSize.WeightKg > 0 {
		return item.BagSize.WeightKg
	}
	if item.BagSizeWeightKg != nil && *item.BagSizeWeightKg > 0 {
		return *item.BagSizeWeightKg
	}
	return 0
}

// Remaining returns max(0, ordered - dispatched) in tons.
func Remaining(ordered, dispatched float64) float64 {
	rem := decimal.NewFromFloat(ordered).Sub(decimal.NewFromFloat(dispatched))
	if rem.IsNegative() {
		return 0
	}
	f, _ := rem.Float64()
	return f
}

// Fulfilled reports whether dispatched covers ordered within Epsilon.
func Fulfilled(ordered, dispatched float64) bool {
	return decimal.NewFromFloat(dispatched).
		Add(epsilon).
		GreaterThanOrEqual(decimal.NewFromFloat(ordered))
}

// ExceedsRemaining reports whether adding qty to dispatched would overshoot
// ordered by more than Epsilon.
func ExceedsRemaining(ordered, dispatched, qty float64) bool {
	return decimal.NewFromFloat(dispatched).
		Add(decimal.NewFromFloat(qty)).
		Sub(decimal.NewFromFloat(ordered)).
		GreaterThan(epsilon)
}

// BagsConsistent reports whether bags × weightKg agrees with the stated
// tonnage within BagToleranceKg. A zero bag count or weight is treated as
// "not specified in bags" and passes.
func BagsConsistent(tons float64, bags int, weightKg float64) bool {
	if bags <= 0 || weightKg <= 0 {
		return true
	}
	statedKg := decimal.NewFromFloat(tons).Mul(kgPerTon)
	bagKg := decimal.NewFromInt(int64(bags)).Mul(decimal.NewFromFloat(weightKg))
	return statedKg.Sub(bagKg).Abs().LessThanOrEqual(bagTolKg)
}
