// options.go: the options mini-grammar.
//
// An options clause is either a named preset or an optional amount followed
// by single-letter flags:
//
//	amount := "all" | "0" | [1-9][0-9]*      (default 1)
//	flags  := { r, o, e, E, p }              (each at most once)
//
//	r  sample with replacement
//	o  preserve original insertion order in the result
//	e  force expression evaluation
//	E  forbid expression evaluation (incompatible with 'e')
//	p  push the rendered values back onto the stack instead of emitting
//
// Presets: "shuffle" (all, random order, text), "list" (all, keep order,
// text), "eval" (all, keep order, evaluate expressions).
package rngquery

import (
	"fmt"
	"regexp"
	"strconv"
)

type amount struct {
	all bool
	n   uint32
}

type evalExpr int

const (
	evalAuto evalExpr = iota // expression iff the statement has one entry
	evalOn
	evalOff
)

type options struct {
	amount    amount
	repeating bool
	keepOrder bool
	evalExpr  evalExpr
	push      bool
}

func defaultOptions() options {
	return options{amount: amount{n: 1}}
}

var optionsRe = regexp.MustCompile(`^(all|0|[1-9][0-9]*)?\s*([reEop\s]*)$`)

// parseOptions parses a trimmed options clause. The empty string yields the
// defaults (take one, no replacement, auto expression evaluation).
func parseOptions(s string) (options, error) {
	switch s {
	case "shuffle":
		return options{amount: amount{all: true}, evalExpr: evalOff}, nil
	case "list":
		return options{amount: amount{all: true}, evalExpr: evalOff, keepOrder: true}, nil
	case "eval":
		return options{amount: amount{all: true}, evalExpr: evalOn, keepOrder: true}, nil
	}

	caps := optionsRe.FindStringSubmatch(s)
	if caps == nil {
		return options{}, &OptionsError{Msg: fmt.Sprintf("bad options: %q", s)}
	}

	amt := amount{n: 1}
	switch a := caps[1]; {
	case a == "":
		// default
	case a == "all":
		amt = amount{all: true}
	default:
		n, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return options{}, &OptionsError{Msg: fmt.Sprintf("bad amount: %v", err)}
		}
		amt = amount{n: uint32(n)}
	}

	seen := make(map[rune]bool)
	var dup []rune
	opts := options{amount: amt}
	for _, c := range caps[2] {
		if c == ' ' || c == '\t' {
			continue
		}
		if seen[c] {
			dup = append(dup, c)
			continue
		}
		seen[c] = true
		switch c {
		case 'r':
			opts.repeating = true
		case 'o':
			opts.keepOrder = true
		case 'p':
			opts.push = true
		case 'e', 'E':
			// handled below, both need to be known first
		}
	}
	if len(dup) > 0 {
		return options{}, &OptionsError{Msg: "duplicate flags: " + string(dup)}
	}
	if seen['e'] && seen['E'] {
		return options{}, &OptionsError{Msg: "flags 'e' and 'E' are incompatible"}
	}
	if seen['e'] {
		opts.evalExpr = evalOn
	} else if seen['E'] {
		opts.evalExpr = evalOff
	}
	return opts, nil
}
