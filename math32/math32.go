// math32 is a stand-in for the built-in math package, but the functions take float32s (or any comparable numbers) instead of float64s.
// The whole of tetrapose works in float32 (the precision of mgl32), so these helpers save a lot of float64 round-tripping at call sites.
package math32

import (
	"math"
)

// Epsilon is the tolerance used by ApproxEqual and the zero checks in the pose operators.
const Epsilon = float32(1e-6)

// ToRadians is a helper function to easily convert degrees to radians (which is what the rotation-oriented functions in tetrapose use).
func ToRadians(degrees float32) float32 {
	return math.Pi * degrees / 180
}

// ToDegrees is a helper function to easily convert radians to degrees for human readability.
func ToDegrees(radians float32) float32 {
	return radians / math.Pi * 180
}

// Min returns the minimum value out of two provided values.
func Min[number float32 | float64 | int | int32 | int64](x, y number) number {
	if x < y {
		return x
	}
	return y
}

// Clamp clamps a value to the minimum and maximum values provided.
func Clamp[number float32 | float64 | int | int32 | int64](value, min, max number) number {
	if value < min {
		return min
	} else if value > max {
		return max
	}
	return value
}

// Sign returns the sign of the value given. If it's greater than 0, it returns 1. If less than 0, it returns -1. Otherwise, it returns 0.
func Sign(f float32) float32 {
	if f > 0 {
		return 1
	} else if f < 0 {
		return -1
	}
	return 0
}

// Lerp linearly interpolates from a to b by t. t = 0 returns a and t = 1 returns b exactly.
func Lerp(a, b, t float32) float32 {
	if t == 0 {
		return a
	} else if t == 1 {
		return b
	}
	return a + (b-a)*t
}

// InverseLerp returns the parameter at which value lies between a and b. A zero-length range returns 0.
func InverseLerp(a, b, value float32) float32 {
	if a == b {
		return 0
	}
	return (value - a) / (b - a)
}

// CatmullRom evaluates the Catmull-Rom spline segment running from p0 to p1 at t, with before and after as the flanking control points.
// t = 0 returns p0 and t = 1 returns p1.
func CatmullRom(before, p0, p1, after, t float32) float32 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * ((2 * p0) +
		(-before+p1)*t +
		(2*before-5*p0+4*p1-after)*t2 +
		(-before+3*p0-3*p1+after)*t3)
}

// Recip returns 1/x, or 0 when x is 0 so degenerate values stay degenerate instead of turning into Inf.
func Recip(x float32) float32 {
	if x == 0 {
		return 0
	}
	return 1 / x
}

// SafeDivide returns x / y, or fallback when y is 0.
func SafeDivide(x, y, fallback float32) float32 {
	if y == 0 {
		return fallback
	}
	return x / y
}

// ApproxEqual returns if a and b are within Epsilon of each other.
func ApproxEqual(a, b float32) bool {
	return Abs(a-b) <= Epsilon
}

// Round returns the nearest integer to x, rounding half away from zero.
func Round(x float32) float32 {
	return float32(math.Round(float64(x)))
}

// Sqrt returns the square root of x.
//
// Special cases are:
//
//	Sqrt(+Inf) = +Inf
//	Sqrt(±0) = ±0
//	Sqrt(x < 0) = NaN
//	Sqrt(NaN) = NaN
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Pow returns x**y.
func Pow(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// Sin returns the sine of the radian argument x.
func Sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

// Asin returns the arcsine, in radians, of x.
func Asin(x float32) float32 {
	return float32(math.Asin(float64(x)))
}

// Atan2 returns the arc tangent of y/x, using
// the signs of the two to determine the quadrant
// of the return value.
func Atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

// Mod returns the floating-point remainder of x/y.
// The magnitude of the result is less than y and its
// sign agrees with that of x.
//
// Special cases are:
//
//	Mod(±Inf, y) = NaN
//	Mod(NaN, y) = NaN
//	Mod(x, 0) = NaN
//	Mod(x, ±Inf) = x
//	Mod(x, NaN) = NaN
func Mod(x, y float32) float32 {
	return float32(math.Mod(float64(x), float64(y)))
}
