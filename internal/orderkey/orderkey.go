// Package orderkey generates fractional-index order_keys for sibling
// ordering. A key is a short base-62 string; lexicographic (byte-wise)
// comparison of two keys matches the numeric comparison of the fractional
// values they encode, so SQL's plain ORDER BY order_key works unmodified.
package orderkey

import (
	"strings"

	"github.com/hallowell/workitem/internal/apperr"
)

// alphabet is ordered so that byte-wise string comparison agrees with
// ASCII byte order, which is also the value order used for bisection:
// '0'-'9' < 'A'-'Z' < 'a'-'z'.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = len(alphabet)

// maxDepth bounds the number of digits Calculate will emit before giving up.
// In practice the loop terminates in at most len(before)+1 or len(after)+1
// steps; this is a defensive backstop against malformed stored keys.
const maxDepth = 256

func digitValue(c byte) int {
	return strings.IndexByte(alphabet, c)
}

func digitChar(v int) byte {
	return alphabet[v]
}

// Calculate returns an order_key that sorts strictly between before and
// after. Either may be nil, meaning "no neighbour on that side" (insertion
// at the start or end of the sibling list). Passing two equal, non-nil
// neighbours fails: callers must never do this, since it indicates
// duplicate keys already in the database.
func Calculate(before, after *string) (string, error) {
	if before != nil && after != nil {
		if *before == *after {
			return "", apperr.OrderKeyExhausted("cannot bisect equal neighbour keys %q", *before)
		}
		if *before > *after {
			return "", apperr.OrderKeyExhausted("before key %q must sort before after key %q", *before, *after)
		}
	}

	var lo, hi string
	if before != nil {
		lo = *before
	}
	if after != nil {
		hi = *after
	}

	var digits []byte
	for i := 0; i < maxDepth; i++ {
		loDigit := 0
		if i < len(lo) {
			loDigit = digitValue(lo[i])
		}

		hiDigit := base
		if after != nil && i < len(hi) {
			hiDigit = digitValue(hi[i])
		}

		gap := hiDigit - loDigit
		switch {
		case gap >= 2:
			digits = append(digits, digitChar(loDigit+gap/2))
			return string(digits), nil
		case gap == 1:
			// No room to fit a digit between loDigit and hiDigit directly:
			// take loDigit and go one level deeper, where the upper bound
			// no longer constrains us (anything starting with loDigit here
			// already sorts below hi).
			digits = append(digits, digitChar(loDigit))
			after = nil
		case gap == 0:
			digits = append(digits, digitChar(loDigit))
		default:
			return "", apperr.OrderKeyExhausted("before key %q must sort before after key %q", lo, hi)
		}
	}
	return "", apperr.OrderKeyExhausted("exceeded max precision bisecting between %q and %q", lo, hi)
}

// Initial returns the order_key used for the very first item in an
// otherwise-empty sibling list.
func Initial() (string, error) {
	return Calculate(nil, nil)
}
