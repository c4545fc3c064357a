// interval.go: numeric interval notation and sampling.
//
// Two forms are recognized:
//
//	bracket form:  [low..high]  (low, high)  [low, high) ...
//	range form:    low..high    low..=high
//
// Comma-separated bounds, or a decimal point in either bound, select the
// float family; ".." and "..=" select integers. Inside brackets the two
// range separators are equivalent, the brackets alone declare inclusivity. Integer intervals
// normalize to a canonical half-open range at parse time and reject empty or
// overflowing ranges. Float intervals sample uniformly, honoring endpoint
// exclusivity with open-interval draws.
package rngquery

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

var (
	intervalRe = regexp.MustCompile(`^([\[(])\s*([+-]?(?:\d*\.)?\d+)\s*(,|\.\.=?)\s*([+-]?(?:\d*\.)?\d+)\s*([\])])$`)
	rangeRe    = regexp.MustCompile(`^([+-]?\d+)\.\.(=)?([+-]?\d+)$`)
)

// Interval is a parsed interval description. Integer bounds are stored
// canonically half-open; the original inclusivity is kept for rendering.
type Interval struct {
	lowInc  bool
	highInc bool
	isFloat bool

	intStart, intEnd int64 // [intStart, intEnd)
	fStart, fEnd     float64
}

// parseInterval recognizes both interval forms, range form first. Returns
// errNoMatch when the text has neither shape; lexical matches with invalid
// bounds are hard *ExprError failures.
func parseInterval(s string) (Interval, error) {
	if iv, err := parseRangeForm(s); err != errNoMatch {
		return iv, err
	}
	return parseBracketForm(s)
}

func parseRangeForm(s string) (Interval, error) {
	caps := rangeRe.FindStringSubmatch(s)
	if caps == nil {
		return Interval{}, errNoMatch
	}
	start, err := parseIntBound(s, caps[1], "start")
	if err != nil {
		return Interval{}, err
	}
	end, err := parseIntBound(s, caps[3], "end")
	if err != nil {
		return Interval{}, err
	}
	inclusive := caps[2] == "="
	iv := Interval{lowInc: true, highInc: inclusive}
	if err := iv.setIntBounds(s, start, end); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func parseBracketForm(s string) (Interval, error) {
	caps := intervalRe.FindStringSubmatch(s)
	if caps == nil {
		return Interval{}, errNoMatch
	}

	iv := Interval{
		lowInc:  caps[1] == "[",
		highInc: caps[5] == "]",
	}
	start, end := caps[2], caps[4]
	isFloat := caps[3] == "," || strings.Contains(start, ".") || strings.Contains(end, ".")

	if isFloat {
		lo, err := parseFloatBound(s, start, "start")
		if err != nil {
			return Interval{}, err
		}
		hi, err := parseFloatBound(s, end, "end")
		if err != nil {
			return Interval{}, err
		}
		if !(lo < hi) {
			return Interval{}, &ExprError{Input: s, Msg: "the interval is empty"}
		}
		iv.isFloat = true
		iv.fStart, iv.fEnd = lo, hi
		return iv, nil
	}

	lo, err := parseIntBound(s, start, "start")
	if err != nil {
		return Interval{}, err
	}
	hi, err := parseIntBound(s, end, "end")
	if err != nil {
		return Interval{}, err
	}
	if err := iv.setIntBounds(s, lo, hi); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func parseIntBound(input, num, part string) (int64, error) {
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, &ExprError{Input: input, Msg: fmt.Sprintf("%s: %v", part, err)}
	}
	return n, nil
}

func parseFloatBound(input, num, part string) (float64, error) {
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, &ExprError{Input: input, Msg: fmt.Sprintf("%s: %v", part, err)}
	}
	return f, nil
}

// setIntBounds converts the declared bounds into the canonical half-open
// range: an exclusive low bumps the start, an inclusive high bumps the end.
func (iv *Interval) setIntBounds(input string, start, end int64) error {
	if !iv.lowInc {
		if start == math.MaxInt64 {
			return &ExprError{Input: input, Msg: "start value is too big"}
		}
		start++
	}
	if iv.highInc {
		if end == math.MaxInt64 {
			return &ExprError{Input: input, Msg: "end value is too big"}
		}
		end++
	}
	if start >= end {
		return &ExprError{Input: input, Msg: "the interval is empty"}
	}
	iv.intStart, iv.intEnd = start, end
	return nil
}

// String renders the interval with its original bounds and bracket kinds,
// "[1..10)" for integers and "[1, 10)" for floats.
func (iv Interval) String() string {
	var b strings.Builder
	if iv.lowInc {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if iv.isFloat {
		fmt.Fprintf(&b, "%s, %s", formatFloat(iv.fStart), formatFloat(iv.fEnd))
	} else {
		start, end := iv.intStart, iv.intEnd
		if !iv.lowInc {
			start-- // undo canonicalization, bounds were checked at parse
		}
		if iv.highInc {
			end--
		}
		fmt.Fprintf(&b, "%d..%d", start, end)
	}
	if iv.highInc {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// num is an integer-or-float sampled value.
type num struct {
	isFloat bool
	i       int64
	f       float64
}

func (n num) String() string {
	if n.isFloat {
		return formatFloat(n.f)
	}
	return strconv.FormatInt(n.i, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IntervalResult is one sample drawn from an interval.
type IntervalResult struct {
	interval Interval
	value    num
}

// Interval returns the parsed description this sample came from.
func (r *IntervalResult) Interval() Interval { return r.interval }

func (r *IntervalResult) String() string {
	return fmt.Sprintf("%s: %s", r.interval, r.value)
}

// eval draws one value. Integer intervals are uniform over the canonical
// half-open range; the width is computed in uint64 so extreme bounds cannot
// overflow. Float intervals use open-interval variants on exclusive ends.
func (iv Interval) eval(rng *rand.Rand) IntervalResult {
	var value num
	if iv.isFloat {
		scale := iv.fEnd - iv.fStart
		var f float64
		switch {
		case iv.lowInc:
			f = rng.Float64()*scale + iv.fStart
		case iv.highInc:
			f = (1-rng.Float64())*scale + iv.fStart
		default:
			v := rng.Float64()
			for v == 0 {
				v = rng.Float64()
			}
			f = v*scale + iv.fStart
		}
		value = num{isFloat: true, f: f}
	} else {
		width := uint64(iv.intEnd) - uint64(iv.intStart)
		value = num{i: iv.intStart + int64(rng.Uint64N(width))}
	}
	return IntervalResult{interval: iv, value: value}
}
