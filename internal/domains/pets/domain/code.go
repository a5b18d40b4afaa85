package domain

import (
	"errors"
	"strings"
)

const (
	// CodeLength is the number of symbols in a join code.
	CodeLength = 6
	// CodeAlphabet holds the symbols a join code is drawn from.
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrInvalidCode = errors.New("join code must be 6 characters from A-Z and 0-9")

// NormalizeCode trims user input and upper-cases it to the canonical form.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateCode checks a canonical join code.
func ValidateCode(code string) error {
	if len(code) != CodeLength {
		return ErrInvalidCode
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(CodeAlphabet, code[i]) < 0 {
			return ErrInvalidCode
		}
	}
	return nil
}
