// Package sanitize cleans field values typed by remote or terminal users before
// they reach the workflow.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxValueSize bounds a single field value, in bytes.
	DefaultMaxValueSize = 256
	// EnvMaxValueSize overrides DefaultMaxValueSize.
	EnvMaxValueSize = "RECIPIENT_MAX_VALUE_SIZE"
)

var (
	ErrTooLarge    = errors.New("value exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("value contains invalid UTF-8 sequences")
)

// Value enforces the size limit, validates UTF-8 and strips control characters.
// Field values are single line, so newlines and tabs are stripped too.
// Oversized values are rejected rather than truncated.
func Value(input string) (string, error) {
	limit := maxValueSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unicode.IsControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func maxValueSize() int {
	if val := os.Getenv(EnvMaxValueSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxValueSize
}
