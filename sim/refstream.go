package sim

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ParseReferenceString tokenizes a user-supplied reference string into page
// identifiers. Tokens are separated by whitespace or commas; empty tokens
// are dropped. An input with no tokens is rejected, so a machine is never
// constructed over an empty stream.
func ParseReferenceString(s string) ([]string, error) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	if len(tokens) == 0 {
		return nil, errors.New("reference string contains no page tokens")
	}

	return tokens, nil
}

// ValidateFrameCount rejects frame counts a machine cannot be built with.
func ValidateFrameCount(n int) error {
	if n < 1 {
		return fmt.Errorf("frame count must be at least 1, got %d", n)
	}

	return nil
}
