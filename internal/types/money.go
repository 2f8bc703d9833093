// README: Common money helpers used across modules (USD amounts, cent rounding, tolerance compare).
package types

import "math"

// RoundCents rounds a dollar amount to the nearest cent.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// WithinTolerance reports whether two dollar amounts agree within tol.
func WithinTolerance(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
