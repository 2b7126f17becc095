package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minDigits = 4
	maxDigits = 9
)

// NewCode draws a uniformly random code of the given digit width. The range is
// [10^(digits-1), 10^digits), so the leading digit is never zero and no
// zero-padding is needed.
func NewCode(digits int) (int64, error) {
	if digits < minDigits || digits > maxDigits {
		return 0, fmt.Errorf("code width %d out of range [%d, %d]", digits, minDigits, maxDigits)
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := 9 * low

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, fmt.Errorf("draw random code: %w", err)
	}

	return low + n.Int64(), nil
}
