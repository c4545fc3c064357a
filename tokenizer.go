// tokenizer.go: separator-aware splitting of one input line.
//
// A line is scanned rune by rune into entry slices, an optional options
// clause and statement boundaries. Separators only take effect at nesting
// depth zero: inside any bracket pair or a double-quoted region they are
// plain text. Square and round brackets cross-match (either may close
// either); curly braces only match curly braces.
package rngquery

import (
	"strings"
	"unicode/utf8"
)

type partKind int

const (
	partEntry partKind = iota
	partOptions
	partEndStmt
)

// queryPart is one token produced by the splitter. Entry and options parts
// carry their trimmed text; statement boundaries carry none.
type queryPart struct {
	kind partKind
	text string
}

type splitMode int

const (
	modeEntry splitMode = iota
	modeOptions
	modeEndStmt
)

// splitter scans a single line. It is a lazy iterator: call next until the
// second return value is false. After the first error it stops emitting.
type splitter struct {
	line string
	sep  Separators
	cur  int // byte offset of the next rune
	last int // byte offset where the current slice started
	mode splitMode
	fail bool
}

func newSplitter(line string, sep Separators) *splitter {
	return &splitter{line: line, sep: sep}
}

func (s *splitter) isAtEnd() bool { return s.cur >= len(s.line) }

func (s *splitter) advance() (rune, bool) {
	if s.isAtEnd() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s.line[s.cur:])
	s.cur += size
	return r, true
}

// takeSlice returns the text between the end of the previous slice and the
// current position, including any separator just consumed.
func (s *splitter) takeSlice() string {
	out := s.line[s.last:s.cur]
	s.last = s.cur
	return out
}

func (s *splitter) next() (queryPart, bool, error) {
	if s.fail {
		return queryPart{}, false, nil
	}
	part, ok, err := s.scan()
	if err != nil {
		s.fail = true
	}
	return part, ok, err
}

func (s *splitter) scan() (queryPart, bool, error) {
	switch s.mode {
	case modeOptions:
		return s.consumeOptions(), true, nil
	case modeEndStmt:
		s.mode = modeEntry
		return queryPart{kind: partEndStmt}, true, nil
	default:
		return s.nextEntry()
	}
}

// consumeOptions takes everything up to the next statement separator (or the
// end of the line) as one verbatim options slice, trimmed. An empty clause
// is still emitted: "a /" yields entry "a" and options "".
func (s *splitter) consumeOptions() queryPart {
	endFound := false
	for {
		r, ok := s.advance()
		if !ok {
			break
		}
		if r == s.sep.Stmt {
			endFound = true
			break
		}
	}
	if endFound {
		s.mode = modeEndStmt
	} else {
		s.mode = modeEntry
	}
	text := strings.TrimSpace(strings.TrimRight(s.takeSlice(), string(s.sep.Stmt)))
	return queryPart{kind: partOptions, text: text}
}

func (s *splitter) nextEntry() (queryPart, bool, error) {
	if s.isAtEnd() {
		return queryPart{}, false, nil
	}

	// Local nesting stack: an entry is only emitted at depth zero, so the
	// stack never survives across entries.
	var stack []nestKind

	for {
		at := s.cur
		r, ok := s.advance()
		if !ok {
			break
		}
		switch r {
		case '"':
			if err := s.consumeString(at); err != nil {
				return queryPart{}, false, err
			}
		case '(', '[', '{':
			stack = append(stack, nestFromRune(r))
		case ')', ']', '}':
			closing := nestFromRune(r)
			if len(stack) == 0 {
				return queryPart{}, false, &TokenizeError{
					Offset: at,
					Msg:    "unbalanced " + closing.name(),
				}
			}
			pending := stack[len(stack)-1]
			if !pending.matches(closing) {
				return queryPart{}, false, &TokenizeError{
					Offset: at,
					Msg:    "unbalanced " + pending.name(),
				}
			}
			stack = stack[:len(stack)-1]
		default:
			if len(stack) > 0 {
				continue
			}
			switch r {
			case s.sep.Entry:
				return queryPart{kind: partEntry, text: trimEntry(s.takeSlice(), r)}, true, nil
			case s.sep.Options:
				e := trimEntry(s.takeSlice(), r)
				s.mode = modeOptions
				if e == "" {
					return s.next()
				}
				return queryPart{kind: partEntry, text: e}, true, nil
			case s.sep.Stmt:
				e := trimEntry(s.takeSlice(), r)
				s.mode = modeEndStmt
				if e == "" {
					return s.next()
				}
				return queryPart{kind: partEntry, text: e}, true, nil
			}
		}
	}

	// End of line inside open nesting is an error; otherwise the remainder
	// is the final entry.
	if len(stack) > 0 {
		return queryPart{}, false, &TokenizeError{
			Offset: len(s.line),
			Msg:    "unbalanced " + stack[len(stack)-1].name(),
		}
	}
	e := trimEntry(s.takeSlice(), s.sep.Entry)
	return queryPart{kind: partEntry, text: e}, true, nil
}

// consumeString eats a double-quoted region verbatim; separators inside lose
// their meaning. start is the offset of the opening quote, reported when the
// region never closes.
func (s *splitter) consumeString(start int) error {
	for {
		r, ok := s.advance()
		if !ok {
			return &TokenizeError{Offset: start, Msg: `missing trailing '"' to close a string`}
		}
		if r == '"' {
			return nil
		}
	}
}

// trimEntry strips the trailing separator and surrounding whitespace, then
// unwraps the quotes of an entry that is one whole quoted string.
func trimEntry(entry string, sep rune) string {
	entry = strings.TrimSpace(strings.TrimRight(entry, string(sep)))
	if strings.HasPrefix(entry, `"`) &&
		strings.HasSuffix(entry, `"`) &&
		strings.Count(entry, `"`) == 2 {
		entry = strings.TrimSpace(strings.Trim(entry, `"`))
	}
	return entry
}

type nestKind int

const (
	nestRound nestKind = iota
	nestSquare
	nestCurly
)

func nestFromRune(r rune) nestKind {
	switch r {
	case '(', ')':
		return nestRound
	case '[', ']':
		return nestSquare
	default:
		return nestCurly
	}
}

func (n nestKind) name() string {
	switch n {
	case nestRound:
		return "parenthesis"
	case nestSquare:
		return "square brackets"
	default:
		return "curly braces"
	}
}

// matches reports whether other can close n. Round and square brackets are
// interchangeable as a matching pair; curly braces only match themselves.
func (n nestKind) matches(other nestKind) bool {
	if n == other {
		return true
	}
	return (n == nestRound || n == nestSquare) &&
		(other == nestRound || other == nestSquare)
}
