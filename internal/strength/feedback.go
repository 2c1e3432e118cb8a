package strength

import (
	"strings"
	"unicode"
)

// buildFeedback inspects a weak password and produces a warning plus
// actionable suggestions. Heuristics mirror the pattern checks used at
// record-write time: character variety, length, sequential runs and
// keyboard walks.
func buildFeedback(password string) *Feedback {
	f := &Feedback{Suggestions: []string{}}

	switch {
	case hasSequentialChars(password):
		f.Warning = "Sequences like abc or 123 are easy to guess"
		f.Suggestions = append(f.Suggestions, "Avoid sequences of letters or digits")
	case hasKeyboardPattern(password):
		f.Warning = "Straight rows of keys are easy to guess"
		f.Suggestions = append(f.Suggestions, "Avoid keyboard patterns like qwerty")
	case len(password) < 8:
		f.Warning = "This password is too short"
	}

	if len(password) < 12 {
		f.Suggestions = append(f.Suggestions, "Use 12 or more characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower {
		f.Suggestions = append(f.Suggestions, "Mix uppercase and lowercase letters")
	}
	if !hasDigit {
		f.Suggestions = append(f.Suggestions, "Add digits")
	}
	if !hasSpecial {
		f.Suggestions = append(f.Suggestions, "Add special symbols")
	}

	if f.Warning == "" && len(f.Suggestions) > 0 {
		f.Warning = "This password could be guessed with modest effort"
	}

	return f
}

// hasSequentialChars reports whether the password contains a run of 3 or
// more consecutive digits or letters (abc, 123, ...).
func hasSequentialChars(password string) bool {
	lower := strings.ToLower(password)
	const digits = "0123456789"
	const letters = "abcdefghijklmnopqrstuvwxyz"

	for i := 0; i+3 <= len(lower); i++ {
		chunk := lower[i : i+3]
		if strings.Contains(digits, chunk) || strings.Contains(letters, chunk) {
			return true
		}
	}
	return false
}

var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

// hasKeyboardPattern reports whether the password contains a straight
// keyboard-row run of 4 or more keys.
func hasKeyboardPattern(password string) bool {
	lower := strings.ToLower(password)
	for _, row := range keyboardRows {
		for i := 0; i+4 <= len(row); i++ {
			if strings.Contains(lower, row[i:i+4]) {
				return true
			}
		}
	}
	return false
}
