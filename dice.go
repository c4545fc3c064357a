// dice.go: dice-roll notation and evaluation.
//
// Grammar:
//
//	[amount]d(sides|%)[!][(k|d)[h|l][selectAmount]][(+|-)modifier]...
//
// "%" means 100 sides. "!" marks exploding dice: a die landing on its
// maximum face immediately rolls an extra die, chained into the same group.
// The select clause keeps or drops a count of the highest or lowest dice
// ("k" alone keeps high, "d" alone drops low). Signed modifiers are summed
// into one net modifier.
package rngquery

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	rollRe     = regexp.MustCompile(`^(\d+)?d(\d+|%)(!)?(([kd][hl]?)(\d+)?)?((?:[+-]\d+)+)?$`)
	modifierRe = regexp.MustCompile(`[+-]\d+`)
)

// Explosion chains are cut after this many extra dice per logical die, so
// degenerate rolls like 1d1! terminate.
const maxExplosions = 1000

type selectAction int

const (
	selectKeep selectAction = iota
	selectDrop
)

type selectWhich int

const (
	selectHigh selectWhich = iota
	selectLow
)

// selectDice keeps or drops a count of the highest or lowest rolled dice.
type selectDice struct {
	amount uint16
	action selectAction
	which  selectWhich
}

// Roll is a parsed dice-roll description.
type Roll struct {
	amount    uint16
	sides     uint16
	exploding bool
	sel       *selectDice
	modifier  int
}

// parseRoll recognizes dice notation. It returns errNoMatch when the text is
// not dice notation at all; once the lexical shape matches, any semantic
// problem is a hard *ExprError.
func parseRoll(s string) (Roll, error) {
	caps := rollRe.FindStringSubmatch(s)
	if caps == nil {
		return Roll{}, errNoMatch
	}

	var r Roll

	r.amount = 1
	if caps[1] != "" {
		n, err := strconv.ParseUint(caps[1], 10, 16)
		if err != nil {
			return Roll{}, &ExprError{Input: s, Msg: fmt.Sprintf("bad amount: %v", err)}
		}
		if n == 0 {
			return Roll{}, &ExprError{Input: s, Msg: "amount can't be 0"}
		}
		r.amount = uint16(n)
	}

	if caps[2] == "%" {
		r.sides = 100
	} else {
		n, err := strconv.ParseUint(caps[2], 10, 16)
		if err != nil {
			return Roll{}, &ExprError{Input: s, Msg: fmt.Sprintf("bad number of sides: %v", err)}
		}
		if n == 0 {
			return Roll{}, &ExprError{Input: s, Msg: "number of sides can't be 0"}
		}
		r.sides = uint16(n)
	}

	r.exploding = caps[3] != ""

	if caps[4] != "" {
		sel := selectDice{amount: 1}
		switch caps[5] {
		case "k", "kh":
			sel.action, sel.which = selectKeep, selectHigh
		case "kl":
			sel.action, sel.which = selectKeep, selectLow
		case "d", "dl":
			sel.action, sel.which = selectDrop, selectLow
		case "dh":
			sel.action, sel.which = selectDrop, selectHigh
		}
		if caps[6] != "" {
			n, err := strconv.ParseUint(caps[6], 10, 16)
			if err != nil {
				return Roll{}, &ExprError{Input: s, Msg: fmt.Sprintf("bad select amount: %v", err)}
			}
			if n == 0 {
				return Roll{}, &ExprError{Input: s, Msg: "select amount can't be 0"}
			}
			sel.amount = uint16(n)
		}
		r.sel = &sel
	}

	if caps[7] != "" {
		for _, m := range modifierRe.FindAllString(caps[7], -1) {
			n, err := strconv.ParseInt(m, 10, 32)
			if err != nil {
				return Roll{}, &ExprError{Input: s, Msg: fmt.Sprintf("bad modifier: %v", err)}
			}
			r.modifier += int(n)
		}
	}

	return r, nil
}

// String renders the roll back in canonical notation: "d6", "2d20!", "4d6d",
// "d%"-style sides always render numeric ("d100").
func (r Roll) String() string {
	var b strings.Builder
	if r.amount > 1 {
		fmt.Fprintf(&b, "%d", r.amount)
	}
	fmt.Fprintf(&b, "d%d", r.sides)
	if r.exploding {
		b.WriteByte('!')
	}
	if r.sel != nil {
		switch {
		case r.sel.action == selectKeep && r.sel.which == selectHigh:
			b.WriteString("k")
		case r.sel.action == selectKeep && r.sel.which == selectLow:
			b.WriteString("kl")
		case r.sel.action == selectDrop && r.sel.which == selectHigh:
			b.WriteString("dh")
		default:
			b.WriteString("d")
		}
		if r.sel.amount > 1 {
			fmt.Fprintf(&b, "%d", r.sel.amount)
		}
	}
	if r.modifier != 0 {
		fmt.Fprintf(&b, "%+d", r.modifier)
	}
	return b.String()
}

// Die is a single rolled value. Drop marks dice discarded by the select
// clause; dropped dice still show in the full rendering but do not count
// toward the total.
type Die struct {
	Val  uint16
	Drop bool
}

func (d Die) String() string {
	if d.Drop {
		return fmt.Sprintf("%dd", d.Val)
	}
	return strconv.Itoa(int(d.Val))
}

// RollResult is the outcome of evaluating a Roll.
type RollResult struct {
	roll Roll
	dice []Die
}

// eval rolls the dice. Each die is uniform in [1, sides]; exploding re-rolls
// chain onto the same group. Select-clause drops are applied positionally
// after an ascending sort, tie-break by value only.
func (r Roll) eval(rng *rand.Rand) RollResult {
	var dice []Die
	for i := 0; i < int(r.amount); i++ {
		for chain := 0; ; chain++ {
			val := uint16(rng.IntN(int(r.sides))) + 1
			dice = append(dice, Die{Val: val})
			if !r.exploding || val != r.sides || chain >= maxExplosions {
				break
			}
		}
	}

	if r.sel != nil {
		sort.Slice(dice, func(i, j int) bool { return dice[i].Val < dice[j].Val })
		n := int(r.sel.amount)
		switch {
		case r.sel.action == selectKeep && r.sel.which == selectHigh:
			for i := 0; i < len(dice)-n; i++ {
				dice[i].Drop = true
			}
		case r.sel.action == selectKeep && r.sel.which == selectLow:
			for i := n; i < len(dice); i++ {
				dice[i].Drop = true
			}
		case r.sel.action == selectDrop && r.sel.which == selectHigh:
			for i := len(dice) - n; i < len(dice); i++ {
				if i >= 0 {
					dice[i].Drop = true
				}
			}
		default: // drop low
			for i := 0; i < n && i < len(dice); i++ {
				dice[i].Drop = true
			}
		}
	}

	return RollResult{roll: r, dice: dice}
}

// Roll returns the parsed description this result came from.
func (r *RollResult) Roll() Roll { return r.roll }

// Dice returns every rolled die, dropped ones included.
func (r *RollResult) Dice() []Die { return r.dice }

// Total is the sum of non-dropped die values plus the net modifier.
func (r *RollResult) Total() int {
	total := r.roll.modifier
	for _, d := range r.dice {
		if !d.Drop {
			total += int(d.Val)
		}
	}
	return total
}

// String renders the full form: "2d6: 9", or with the individual dice when
// they matter: "3d6!k2+1: [2d+4+6]+1 = 11".
func (r *RollResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", r.roll)

	if r.roll.exploding || r.roll.sel != nil || r.roll.modifier != 0 {
		b.WriteByte('[')
		for i, d := range r.dice {
			if i > 0 {
				b.WriteByte('+')
			}
			b.WriteString(d.String())
		}
		b.WriteByte(']')
		if r.roll.modifier != 0 {
			fmt.Fprintf(&b, "%+d", r.roll.modifier)
		}
		b.WriteString(" = ")
	}

	fmt.Fprintf(&b, "%d", r.Total())
	return b.String()
}
