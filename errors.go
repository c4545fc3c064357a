// errors.go: typed error kinds and caret-snippet rendering.
//
// Three error kinds cover the interpreter:
//
//   - *TokenizeError: the line could not be split (unclosed quoted string,
//     unbalanced bracket nesting). Carries the offending byte offset.
//   - *OptionsError: a malformed options clause (bad amount, duplicate or
//     conflicting flags).
//   - *ExprError: an entry matched the lexical shape of an expression but
//     failed semantic validation (zero-sided dice, empty interval, ...).
//     These are hard failures, never downgraded to literal text.
//
// WrapErrorWithSource turns a TokenizeError into a readable snippet with a
// caret under the offending column:
//
//	TOKENIZE ERROR at offset 7: unbalanced curly braces
//
//	  | (a, {b), c
//	  |        ^
//
// Other errors are returned unchanged.
package rngquery

import (
	"errors"
	"fmt"
	"strings"
)

// TokenizeError reports a grammar error while splitting a line. Offset is a
// byte offset into the line.
type TokenizeError struct {
	Offset int
	Msg    string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("TOKENIZE ERROR at offset %d: %s", e.Offset, e.Msg)
}

// OptionsError reports a malformed options clause.
type OptionsError struct {
	Msg string
}

func (e *OptionsError) Error() string {
	return "OPTIONS ERROR: " + e.Msg
}

// ExprError reports an entry that committed to an expression grammar and
// failed validation.
type ExprError struct {
	Input string
	Msg   string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("EXPRESSION ERROR in %q: %s", e.Input, e.Msg)
}

// WrapErrorWithSource augments a tokenize error with a caret-annotated
// snippet of the offending line. Offsets out of range are clamped so the
// caret always renders. All other error kinds pass through unchanged.
func WrapErrorWithSource(err error, line string) error {
	var te *TokenizeError
	if !errors.As(err, &te) {
		return err
	}
	off := te.Offset
	if off < 0 {
		off = 0
	}
	if off > len(line) {
		off = len(line)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", te.Error())
	fmt.Fprintf(&b, "  | %s\n", line)
	fmt.Fprintf(&b, "  | %s^\n", strings.Repeat(" ", off))
	return errors.New(b.String())
}
