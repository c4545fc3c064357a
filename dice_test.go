package rngquery

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
)

func mustRoll(t *testing.T, s string) Roll {
	t.Helper()
	r, err := parseRoll(s)
	if err != nil {
		t.Fatalf("parseRoll(%q): %v", s, err)
	}
	return r
}

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func Test_Roll_Parse(t *testing.T) {
	cases := []struct {
		in   string
		want Roll
	}{
		{"d6", Roll{amount: 1, sides: 6}},
		{"2d6", Roll{amount: 2, sides: 6}},
		{"d%", Roll{amount: 1, sides: 100}},
		{"3d6!", Roll{amount: 3, sides: 6, exploding: true}},
		{"4d6k3", Roll{amount: 4, sides: 6, sel: &selectDice{amount: 3, action: selectKeep, which: selectHigh}}},
		{"4d6kh3", Roll{amount: 4, sides: 6, sel: &selectDice{amount: 3, action: selectKeep, which: selectHigh}}},
		{"4d6kl", Roll{amount: 4, sides: 6, sel: &selectDice{amount: 1, action: selectKeep, which: selectLow}}},
		{"4d6d", Roll{amount: 4, sides: 6, sel: &selectDice{amount: 1, action: selectDrop, which: selectLow}}},
		{"4d6dh2", Roll{amount: 4, sides: 6, sel: &selectDice{amount: 2, action: selectDrop, which: selectHigh}}},
		{"2d20+3", Roll{amount: 2, sides: 20, modifier: 3}},
		{"2d20+3-1", Roll{amount: 2, sides: 20, modifier: 2}},
		{"d20-5+5", Roll{amount: 1, sides: 20}},
	}
	for _, tc := range cases {
		got := mustRoll(t, tc.in)
		if got.amount != tc.want.amount || got.sides != tc.want.sides ||
			got.exploding != tc.want.exploding || got.modifier != tc.want.modifier {
			t.Fatalf("parseRoll(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		if (got.sel == nil) != (tc.want.sel == nil) {
			t.Fatalf("parseRoll(%q) select = %+v, want %+v", tc.in, got.sel, tc.want.sel)
		}
		if got.sel != nil && *got.sel != *tc.want.sel {
			t.Fatalf("parseRoll(%q) select = %+v, want %+v", tc.in, *got.sel, *tc.want.sel)
		}
	}
}

func Test_Roll_Parse_NoMatch(t *testing.T) {
	for _, s := range []string{"hello", "d", "2d", "d6x", "2 d6", "-d6", "d6+"} {
		_, err := parseRoll(s)
		if err != errNoMatch {
			t.Fatalf("parseRoll(%q): err = %v, want errNoMatch", s, err)
		}
	}
}

func Test_Roll_Parse_HardErrors(t *testing.T) {
	cases := []struct {
		in      string
		wantMsg string
	}{
		{"0d6", "amount can't be 0"},
		{"d0", "sides can't be 0"},
		{"4d6k0", "select amount can't be 0"},
		{"70000d6", "bad amount"},
		{"d70000", "bad number of sides"},
	}
	for _, tc := range cases {
		_, err := parseRoll(tc.in)
		var ee *ExprError
		if !errors.As(err, &ee) {
			t.Fatalf("parseRoll(%q): err = %v, want *ExprError", tc.in, err)
		}
		if !strings.Contains(ee.Msg, tc.wantMsg) {
			t.Fatalf("parseRoll(%q): error %q does not mention %q", tc.in, ee.Msg, tc.wantMsg)
		}
	}
}

// Rendering a parsed roll reproduces its canonical notation.
func Test_Roll_String(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"d6", "d6"},
		{"1d6", "d6"},
		{"2d6", "2d6"},
		{"d%", "d100"},
		{"3d6!", "3d6!"},
		{"4d6k3", "4d6k3"},
		{"4d6kh3", "4d6k3"},
		{"4d6kl", "4d6kl"},
		{"4d6dl", "4d6d"},
		{"4d6dh2", "4d6dh2"},
		{"2d20+3-1", "2d20+2"},
		{"2d20-3", "2d20-3"},
	}
	for _, tc := range cases {
		if got := mustRoll(t, tc.in).String(); got != tc.want {
			t.Fatalf("parseRoll(%q).String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func Test_Roll_Eval_Invariants(t *testing.T) {
	rng := testRand(7)
	for _, s := range []string{"d6", "10d20", "4d6k3", "6d10dh2", "3d8+5-2", "5d4!"} {
		roll := mustRoll(t, s)
		for i := 0; i < 50; i++ {
			res := roll.eval(rng)
			if len(res.Dice()) < int(roll.amount) {
				t.Fatalf("%s: rolled %d dice, want at least %d", s, len(res.Dice()), roll.amount)
			}
			sum := roll.modifier
			for _, d := range res.Dice() {
				if d.Val < 1 || d.Val > roll.sides {
					t.Fatalf("%s: die value %d outside [1, %d]", s, d.Val, roll.sides)
				}
				if !d.Drop {
					sum += int(d.Val)
				}
			}
			if got := res.Total(); got != sum {
				t.Fatalf("%s: total %d, want sum of kept dice plus modifier %d", s, got, sum)
			}
		}
	}
}

func Test_Roll_Eval_NonExplodingCount(t *testing.T) {
	rng := testRand(3)
	roll := mustRoll(t, "10d6")
	res := roll.eval(rng)
	if len(res.Dice()) != 10 {
		t.Fatalf("10d6 rolled %d dice, want exactly 10", len(res.Dice()))
	}
}

// 1d1! forces the maximum on every die; the chain must still terminate.
func Test_Roll_Eval_ExplodingTerminates(t *testing.T) {
	rng := testRand(1)
	roll := mustRoll(t, "1d1!")
	res := roll.eval(rng)
	if len(res.Dice()) != maxExplosions+1 {
		t.Fatalf("1d1! rolled %d dice, want %d", len(res.Dice()), maxExplosions+1)
	}
	for _, d := range res.Dice() {
		if d.Val != 1 {
			t.Fatalf("1d1! produced die value %d", d.Val)
		}
	}
	if res.Total() != maxExplosions+1 {
		t.Fatalf("1d1! total = %d, want %d", res.Total(), maxExplosions+1)
	}
}

func Test_Roll_Eval_Select(t *testing.T) {
	rng := testRand(11)

	kept := func(res RollResult) []Die {
		var out []Die
		for _, d := range res.Dice() {
			if !d.Drop {
				out = append(out, d)
			}
		}
		return out
	}

	for i := 0; i < 20; i++ {
		res := mustRoll(t, "4d6k3").eval(rng)
		k := kept(res)
		if len(k) != 3 {
			t.Fatalf("4d6k3 kept %d dice, want 3", len(k))
		}
		// keep-high drops the minimum: every kept die >= every dropped die
		for _, d := range res.Dice() {
			if d.Drop {
				for _, kd := range k {
					if kd.Val < d.Val {
						t.Fatalf("4d6k3 kept %d but dropped %d", kd.Val, d.Val)
					}
				}
			}
		}

		res = mustRoll(t, "5d8dh2").eval(rng)
		if got := len(kept(res)); got != 3 {
			t.Fatalf("5d8dh2 kept %d dice, want 3", got)
		}

		res = mustRoll(t, "2d6kl").eval(rng)
		k = kept(res)
		if len(k) != 1 {
			t.Fatalf("2d6kl kept %d dice, want 1", len(k))
		}
		for _, d := range res.Dice() {
			if d.Val < k[0].Val {
				t.Fatalf("2d6kl kept %d but %d was lower", k[0].Val, d.Val)
			}
		}
	}
}

func Test_Roll_Eval_SelectMoreThanRolled(t *testing.T) {
	rng := testRand(5)
	// keeping more dice than were rolled drops nothing
	res := mustRoll(t, "2d6k5").eval(rng)
	for _, d := range res.Dice() {
		if d.Drop {
			t.Fatalf("2d6k5 dropped a die: %+v", res.Dice())
		}
	}
	// dropping more dice than were rolled drops everything
	res = mustRoll(t, "2d6dh5").eval(rng)
	for _, d := range res.Dice() {
		if !d.Drop {
			t.Fatalf("2d6dh5 kept a die: %+v", res.Dice())
		}
	}
	if res.Total() != 0 {
		t.Fatalf("2d6dh5 total = %d, want 0", res.Total())
	}
}

func Test_RollResult_String(t *testing.T) {
	plain := RollResult{
		roll: Roll{amount: 2, sides: 6},
		dice: []Die{{Val: 3}, {Val: 5}},
	}
	if got := plain.String(); got != "2d6: 8" {
		t.Fatalf("plain rendering = %q", got)
	}

	sel := Roll{amount: 3, sides: 6, modifier: 2,
		sel: &selectDice{amount: 2, action: selectKeep, which: selectHigh}}
	detailed := RollResult{
		roll: sel,
		dice: []Die{{Val: 1, Drop: true}, {Val: 4}, {Val: 6}},
	}
	if got := detailed.String(); got != "3d6k2+2: [1d+4+6]+2 = 12" {
		t.Fatalf("detailed rendering = %q", got)
	}
}
