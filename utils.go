package bingo

import "fmt"

// ValidateRange validates range parameters
func ValidateRange(min, max int) error {
	if min > max {
		return ErrInvalidRange.WithDetails(fmt.Sprintf("min=%d, max=%d", min, max))
	}
	return nil
}

// ValidateCount validates count parameter for multiple draws
func ValidateCount(count int) error {
	if count <= 0 || count > MaxAutoDrawCount {
		return ErrInvalidCount.WithDetails(fmt.Sprintf("count=%d", count))
	}
	return nil
}

// InPool reports whether n is a valid ball number
func InPool(n int) bool {
	return n >= LowerBound && n <= UpperBound
}

// ColumnLetter returns the BINGO letter for n: B is 1-15, I 16-30, N 31-45, G 46-60, O 61-75.
// It returns 0 for numbers outside the pool.
func ColumnLetter(n int) byte {
	if !InPool(n) {
		return 0
	}
	return ColumnLetters[(n-1)/GridColumns]
}

// CallLabel formats n the way a caller announces it, e.g. "N-33"
func CallLabel(n int) string {
	letter := ColumnLetter(n)
	if letter == 0 {
		return ""
	}
	return fmt.Sprintf("%c-%d", letter, n)
}
