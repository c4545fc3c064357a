// entry.go: expression classification and sample rendering.
//
// An entry's text is lazily classified into one of a closed set of
// expression kinds. Recognizers run in a fixed priority order: exact
// keywords (coin, color, uuid), then dice notation, then interval notation;
// the first that matches wins and anything else is literal text. A
// recognizer that matches lexically but fails validation is a hard error —
// "d0" never silently becomes the string "d0".
package rngquery

import (
	"errors"
	"math/rand/v2"
	"strconv"
)

// errNoMatch is the internal "not my grammar" signal recognizers use to
// decline an input. It never escapes the package.
var errNoMatch = errors.New("no match")

type exprKind int

const (
	exprText exprKind = iota
	exprCoin
	exprDice
	exprInterval
	exprColor
	exprUUID
)

// expression is a classified entry. Only the field matching the kind is
// meaningful.
type expression struct {
	kind     exprKind
	text     string
	roll     Roll
	interval Interval
}

// parseExpr classifies entry text. Literal text is the fallback only when no
// recognizer committed.
func parseExpr(text string) (expression, error) {
	switch text {
	case "coin":
		return expression{kind: exprCoin}, nil
	case "color":
		return expression{kind: exprColor}, nil
	case "uuid":
		return expression{kind: exprUUID}, nil
	}

	roll, err := parseRoll(text)
	if err == nil {
		return expression{kind: exprDice, roll: roll}, nil
	}
	if err != errNoMatch {
		return expression{}, err
	}

	interval, err := parseInterval(text)
	if err == nil {
		return expression{kind: exprInterval, interval: interval}, nil
	}
	if err != errNoMatch {
		return expression{}, err
	}

	return expression{kind: exprText, text: text}, nil
}

// eval renders one sample, drawing from the source as the kind requires.
// Literal text draws nothing.
func (e expression) eval(rng *rand.Rand) Sample {
	switch e.kind {
	case exprCoin:
		return Sample{Kind: SampleCoin, Coin: tossCoin(rng)}
	case exprDice:
		res := e.roll.eval(rng)
		return Sample{Kind: SampleDice, Dice: &res}
	case exprInterval:
		res := e.interval.eval(rng)
		return Sample{Kind: SampleInterval, Interval: &res}
	case exprColor:
		return Sample{Kind: SampleColor, Text: genColor(rng)}
	case exprUUID:
		return Sample{Kind: SampleUUID, Text: genUUID(rng)}
	default:
		return Sample{Kind: SampleText, Text: e.text}
	}
}

// SampleKind tags the active case of a Sample.
type SampleKind int

const (
	SampleText SampleKind = iota
	SampleCoin
	SampleDice
	SampleInterval
	SampleColor
	SampleUUID
)

// Sample is one rendered result of evaluating a selected entry. Two
// renderings are always derivable from the same underlying datum: String
// shows the expression with its result, Value the result alone. Neither
// ever re-draws from the random source.
type Sample struct {
	Kind     SampleKind
	Text     string // SampleText, SampleColor, SampleUUID
	Coin     CoinResult
	Dice     *RollResult
	Interval *IntervalResult
}

// String is the full rendering: "d20: 15", "[1..10]: 4", "heads".
func (s Sample) String() string {
	switch s.Kind {
	case SampleCoin:
		return s.Coin.String()
	case SampleDice:
		return s.Dice.String()
	case SampleInterval:
		return s.Interval.String()
	default:
		return s.Text
	}
}

// Value is the value-only rendering: just "15", "4", "heads".
func (s Sample) Value() string {
	switch s.Kind {
	case SampleCoin:
		return s.Coin.String()
	case SampleDice:
		return strconv.Itoa(s.Dice.Total())
	case SampleInterval:
		return s.Interval.value.String()
	default:
		return s.Text
	}
}
