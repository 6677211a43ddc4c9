package access

import (
	"fmt"
	"unicode/utf8"
)

const minPasswordLength = 8

func isLowerASCII(r rune) bool { return 'a' <= r && r <= 'z' }
func isUpperASCII(r rune) bool { return 'A' <= r && r <= 'Z' }
func isDigitASCII(r rune) bool { return '0' <= r && r <= '9' }

var passwordRequirements = []struct {
	minCount  int
	countFunc func(rune) bool
	problem   string
}{
	{minPasswordLength, func(rune) bool { return true }, fmt.Sprintf("al menos %d caracteres", minPasswordLength)},
	{1, isLowerASCII, "una minúscula"},
	{1, isUpperASCII, "una mayúscula"},
	{1, isDigitASCII, "un número"},
}

// IsValidPassword returns true when password is at least 8 characters long
// and contains a lowercase letter, an uppercase letter, and a digit.
func IsValidPassword(password string) bool {
	return len(PasswordProblems(password)) == 0
}

// PasswordProblems lists the requirements password does not meet, suitable
// for showing next to a form field.
func PasswordProblems(password string) []string {
	var problems []string
	for _, r := range passwordRequirements {
		if !hasMinimumCount(password, r.minCount, r.countFunc) {
			problems = append(problems, "debe tener "+r.problem)
		}
	}
	return problems
}

func hasMinimumCount(s string, min int, countFunc func(rune) bool) bool {
	if min > utf8.RuneCountInString(s) {
		return false
	}

	var count int
	for _, r := range s {
		if countFunc(r) {
			count++
		}
		if count >= min {
			return true
		}
	}
	return count >= min
}
