package util

import "strings"

// NaturalCompare orders strings the way people read volume names: digit
// runs compare by numeric value, everything else case-insensitively.
// "Vol 2" sorts before "Vol 10". It returns -1, 0 or +1.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		ta, restA := nextToken(a)
		tb, restB := nextToken(b)
		aNum, bNum := isDigit(ta[0]), isDigit(tb[0])

		switch {
		case aNum && !bNum:
			return -1
		case !aNum && bNum:
			return 1
		case aNum:
			if c := compareDigits(ta, tb); c != 0 {
				return c
			}
		default:
			if c := strings.Compare(strings.ToLower(ta), strings.ToLower(tb)); c != 0 {
				return c
			}
		}
		a, b = restA, restB
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// NaturalSortLess reports whether s1 sorts before s2 in natural order.
func NaturalSortLess(s1, s2 string) bool {
	return NaturalCompare(s1, s2) < 0
}

// nextToken splits off the leading run of digits or non-digits.
func nextToken(s string) (token, rest string) {
	digits := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareDigits compares two digit runs by value without parsing, so
// arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
