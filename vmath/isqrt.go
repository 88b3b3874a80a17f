package vmath

import (
	"math"
)

// ISqrtLUTSize bounds the squared distances served from the table
const ISqrtLUTSize = 256

// ceilSqrtLUT maps n to ceil(sqrt(n)) for n in [0, ISqrtLUTSize)
var ceilSqrtLUT [ISqrtLUTSize]int

func init() {
	for i := 0; i < ISqrtLUTSize; i++ {
		ceilSqrtLUT[i] = int(math.Ceil(math.Sqrt(float64(i))))
	}
}

// CeilSqrt returns ceil(sqrt(n)), O(1) for n < ISqrtLUTSize
// Negative input returns 0
func CeilSqrt(n int) int {
	if n < 0 {
		return 0
	}
	if n < ISqrtLUTSize {
		return ceilSqrtLUT[n]
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// CeilDistance is the integer Euclidean distance of an offset, rounded up
func CeilDistance(dx, dy int) int {
	return CeilSqrt(dx*dx + dy*dy)
}

// AbsInt returns |v|
func AbsInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
