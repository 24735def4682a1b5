package model

import "math"

// MaxCode is the largest business code the store can hold.
const MaxCode = math.MaxInt32

// ValidCode reports whether code is a positive code within the store's range.
func ValidCode(code int) bool {
	return code > 0 && code <= MaxCode
}
