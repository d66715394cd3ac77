package money

// Rate is a percentage stored in hundredths of a percent, so 7.25%
// is Rate(725). Keeping rates integral means percentage math never
// touches floating point.
type Rate int64

// rateScale converts hundredths of a percent into a fraction of one.
const rateScale = 10000

// RateFromBasisPoints converts basis points (hundredths of a percent)
// into a Rate.
func RateFromBasisPoints(bp int64) Rate { return Rate(bp) }

// ApplyTo computes rate percent of base cents, rounding half away
// from zero only at the final step.
func (r Rate) ApplyTo(baseCents int64) int64 {
	return RoundHalfAway(baseCents*int64(r), rateScale)
}

// Percentage is a convenience wrapper around Rate.ApplyTo.
func Percentage(baseCents int64, rate Rate) int64 {
	return rate.ApplyTo(baseCents)
}
