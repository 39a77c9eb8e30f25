// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import (
	"io"
	"math"
)

// ToInt32 converts an int to int32, returning overflowErr if it doesn't fit.
func ToInt32(v int, overflowErr error) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, overflowErr
	}
	return int32(v), nil
}

// MulInt multiplies non-negative ints, returning (result, false) on overflow
// or negative input.
func MulInt(factors ...int) (int, bool) {
	product := 1
	for _, f := range factors {
		if f < 0 {
			return 0, false
		}
		if f != 0 && product > math.MaxInt/f {
			return 0, false
		}
		product *= f
	}
	return product, true
}

// ReadAllWithLimit reads up to maxSize bytes from r.
// Returns overflowErr if more than maxSize bytes are available.
func ReadAllWithLimit(r io.Reader, maxSize uint64, overflowErr error) ([]byte, error) {
	if maxSize > uint64(math.MaxInt-1) {
		return nil, overflowErr
	}
	limit := int64(maxSize) + 1 //nolint:gosec // checked above
	lr := &io.LimitedReader{R: r, N: limit}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) > maxSize { //nolint:gosec // len is always non-negative
		return nil, overflowErr
	}
	return data, nil
}
