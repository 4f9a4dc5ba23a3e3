package gfxutil

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func IsPow2(number int) bool {
	return number > 0 && number&(number-1) == 0
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

func DivRoundUp(numerator, denominator int) int {
	return (numerator + denominator - 1) / denominator
}

// RoundUpToMultiple rounds value up to the next multiple of base, which does
// not need to be a power of two.
func RoundUpToMultiple(value, base int) int {
	return DivRoundUp(value, base) * base
}

// RoundDownToMultiple rounds value down to the previous multiple of base,
// which does not need to be a power of two.
func RoundDownToMultiple(value, base int) int {
	return value / base * base
}

// FFS returns the 1-based index of the least significant set bit of value,
// matching the C ffs() the hardware documentation is written against. FFS(0)
// is 0.
func FFS(value uint32) int {
	if value == 0 {
		return 0
	}
	return bits.TrailingZeros32(value) + 1
}

// Minify returns base scaled down for the given mip level, clamped to 1.
func Minify(base, level int) int {
	if base == 0 {
		return 0
	}
	minified := base >> level
	if minified < 1 {
		return 1
	}
	return minified
}
