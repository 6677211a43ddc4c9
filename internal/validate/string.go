package validate

import (
	"fmt"
	"unicode/utf8"
)

type StringRule struct {
	// Value to validate
	Value string
	// Name of the field in the form.
	Name string

	// MinLength is the minimum allowed number of characters.
	MinLength int
	// MaxLength is the maximum allowed number of characters.
	MaxLength int

	// CharacterRanges is a list of character ranges. Every rune in value
	// must be within one of these ranges.
	CharacterRanges []CharRange
}

type CharRange struct {
	Low  rune
	High rune
}

var (
	AlphabetLower = CharRange{Low: 'a', High: 'z'}
	AlphabetUpper = CharRange{Low: 'A', High: 'Z'}
	Numbers       = CharRange{Low: '0', High: '9'}
	Dash          = CharRange{Low: '-', High: '-'}
	Underscore    = CharRange{Low: '_', High: '_'}
	Dot           = CharRange{Low: '.', High: '.'}
	AlphaNumeric  = []CharRange{AlphabetLower, AlphabetUpper, Numbers}
)

func (s StringRule) Validate() *Failure {
	value := s.Value
	if value == "" {
		return nil
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	length := utf8.RuneCountInString(value)
	if s.MinLength > 0 && length < s.MinLength {
		add("debe tener al menos %d caracteres", s.MinLength)
	}

	if s.MaxLength > 0 && length > s.MaxLength {
		add("debe tener como máximo %d caracteres", s.MaxLength)
	}

	if len(s.CharacterRanges) > 0 {
		for i, c := range []rune(value) {
			if !inRange(s.CharacterRanges, c) {
				add("el carácter %q en la posición %d no está permitido", c, i)
				break
			}
		}
	}

	if len(problems) > 0 {
		return fail(s.Name, problems...)
	}
	return nil
}

func inRange(ranges []CharRange, c rune) bool {
	for _, r := range ranges {
		if c >= r.Low && c <= r.High {
			return true
		}
	}
	return false
}
