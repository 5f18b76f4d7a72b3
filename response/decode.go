// Package response turns raw model output into trusted values.
//
// Decoding and validation are separate steps. Decode strips the code fences a
// model tends to wrap JSON in and parses the rest into a generic value without
// looking at field names. ValidateTopic and ValidateFeedback then check that
// value against the expected shape and convert it to a typed result.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("response is not valid JSON")

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// DecodeError reports raw text that could not be parsed.
type DecodeError struct {
	// Text is the input after fence stripping and trimming.
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return ErrDecode.Error()
	}
	return fmt.Sprintf("%s: %v", ErrDecode.Error(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Clean removes surrounding whitespace and one pair of leading/trailing code
// fences (an optional language tag such as "json" is allowed on the opening fence).
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	text = leadingFence.ReplaceAllString(text, "")
	text = trailingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Decode parses raw model output into a generic JSON value (map[string]any,
// []any, string, float64, bool or nil). It never panics; malformed input yields
// a *DecodeError.
func Decode(raw string) (any, error) {
	text := Clean(raw)
	if text == "" {
		return nil, &DecodeError{Text: text, Err: errors.New("empty response")}
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, &DecodeError{Text: text, Err: err}
	}

	return value, nil
}
