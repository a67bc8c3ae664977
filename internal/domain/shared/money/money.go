package money

import "math"

// Amount keeps prices in whole rupees to avoid floating point drift in sums.
type Amount int64

// RoundHalfUp rounds to the nearest whole unit, halves going up.
func RoundHalfUp(v float64) Amount {
	return Amount(math.Floor(v + 0.5))
}

// Add returns the sum of the receiver and other.
func (a Amount) Add(other Amount) Amount {
	return a + other
}

// ApplyRate multiplies the amount by rate and rounds the result.
func (a Amount) ApplyRate(rate float64) Amount {
	return RoundHalfUp(float64(a) * rate)
}

// Average splits the amount over n parts, rounding. Returns zero for n <= 0.
func (a Amount) Average(n int) Amount {
	if n <= 0 {
		return 0
	}
	return RoundHalfUp(float64(a) / float64(n))
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// Int64 exposes the raw amount.
func (a Amount) Int64() int64 {
	return int64(a)
}
