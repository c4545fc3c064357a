// rngquery.go — PUBLIC API SURFACE for the rng-query interpreter.
//
// OVERVIEW
// ========
// rng-query is a small line-oriented query language that produces
// pseudorandom samples: pick entries from a list, roll dice, sample numeric
// intervals, flip coins, generate colors and UUIDs.
//
// A line is a sequence of statements separated by the statement separator
// (default ';'). Each statement is a list of entries separated by the entry
// separator (default ',') plus an optional options clause introduced by the
// options separator (default '/'):
//
//	apple, banana, cherry / 2o
//	3d6!; [1..10]; coin
//
// What you get in this file:
//   - The Interpreter type with the canonical entry points:
//     RunLine (feed one line), AddData (push a raw entry, no tokenizing),
//     Eof (flush a trailing unterminated statement), Run (whole program).
//   - Separators, the three configurable separator runes.
//   - StmtOutput, the ordered samples produced by one statement.
//
// SELECTION SEMANTICS
// -------------------
// The options clause controls how many entries a statement picks and how:
// with or without replacement ('r'), preserving insertion order ('o'),
// forcing or forbidding expression evaluation ('e'/'E'), or pushing results
// back onto the stack ('p'). See options.go for the grammar.
//
// A statement with exactly one entry is treated as an expression unless
// overridden. This implicit rule is deliberate: it makes `rq d20` roll a die
// instead of echoing the text "d20". Easy to regress — keep it in mind.
//
// DETERMINISM
// -----------
// The interpreter exclusively owns a PCG pseudorandom source. Every
// evaluation draws from it in strict left-to-right order, so two
// interpreters built with NewSeeded and the same seed, fed the same lines,
// produce byte-identical outputs. NewInterpreter seeds from system entropy.
//
// ERRORS
// ------
// All entry points return (result, error). Error kinds are *TokenizeError,
// *OptionsError and *ExprError (see errors.go). A failing statement yields
// no partial output and clears the pending entry stack; unrelated prior
// statements keep their already-produced output and the interpreter stays
// usable.
package rngquery

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
)

// Separators are the three distinguished characters that structure a line.
// All three are independently reconfigurable through the Sep field of
// Interpreter. Changing them can shadow expression syntax (for example an
// entry separator of 'd' breaks dice notation), so choose punctuation.
type Separators struct {
	Stmt    rune // ends a statement, default ';'
	Entry   rune // ends an entry, default ','
	Options rune // starts the options clause, default '/'
}

// DefaultSeparators returns ';', ',', '/'.
func DefaultSeparators() Separators {
	return Separators{Stmt: ';', Entry: ',', Options: '/'}
}

// StmtOutput is the ordered list of samples produced by one statement.
type StmtOutput []Sample

// String renders every sample in full form, one per line.
func (o StmtOutput) String() string {
	var b strings.Builder
	for _, s := range o {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// pendingEntry is one unit of input text waiting for selection. The id is a
// monotonic counter used to restore insertion order; it is never reused.
type pendingEntry struct {
	id   int
	text string
}

// Interpreter owns the pseudorandom source, the pending entry stack and the
// active separators. Instances are independent; none share state.
//
// The zero value is not usable, construct with NewInterpreter or NewSeeded.
type Interpreter struct {
	// Sep holds the active separators. May be changed between lines.
	Sep Separators

	stack  []pendingEntry
	nextID int
	rng    *rand.Rand
}

// NewInterpreter creates an interpreter seeded from system entropy.
func NewInterpreter() *Interpreter {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("read random seed: %v", err))
	}
	hi := binary.LittleEndian.Uint64(b[:8])
	lo := binary.LittleEndian.Uint64(b[8:])
	return newInterpreter(rand.NewPCG(hi, lo))
}

// NewSeeded creates an interpreter with a fixed seed for reproducible runs.
func NewSeeded(seed uint64) *Interpreter {
	return newInterpreter(rand.NewPCG(seed, 0))
}

func newInterpreter(src rand.Source) *Interpreter {
	return &Interpreter{
		Sep: DefaultSeparators(),
		rng: rand.New(src),
	}
}

// Run executes a whole program: every line is fed in order to one
// interpreter, so entries accumulate across lines, and a trailing
// unterminated statement is flushed at the end.
func Run(input string) ([]StmtOutput, error) {
	it := NewInterpreter()
	var outputs []StmtOutput
	for _, line := range strings.Split(input, "\n") {
		out, err := it.RunLine(line)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out...)
	}
	out, err := it.Eof()
	if err != nil {
		return nil, err
	}
	if out != nil {
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// AddData pushes a raw entry without going through the tokenizer. The text
// is trimmed; empty text is dropped. The entry is pending until the next
// statement finalizes.
func (it *Interpreter) AddData(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	it.stack = append(it.stack, pendingEntry{id: it.nextID, text: text})
	it.nextID++
}

// RunLine tokenizes one line and returns the outputs of every statement it
// completes. Entries accumulate on the pending stack; a statement finalizes
// on each statement separator and, if the line contributed entries or an
// options clause, once more at the end of the line.
//
// The line must not contain '\n'. On any error the pending stack is cleared:
// a later statement never inherits entries from a failed one.
func (it *Interpreter) RunLine(line string) ([]StmtOutput, error) {
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		it.stack = nil
		return nil, &TokenizeError{Offset: i, Msg: "unexpected newline in line"}
	}

	var outputs []StmtOutput
	var opts *options
	contributed := false

	sp := newSplitter(line, it.Sep)
	for {
		part, ok, err := sp.next()
		if err != nil {
			it.stack = nil
			return nil, err
		}
		if !ok {
			break
		}
		switch part.kind {
		case partEntry:
			it.AddData(part.text)
			// the splitter emits an empty entry for a blank line; that must
			// not finalize entries pending from AddData
			if part.text != "" {
				contributed = true
			}
		case partOptions:
			o, err := parseOptions(part.text)
			if err != nil {
				it.stack = nil
				return nil, err
			}
			opts = &o
			contributed = true
		case partEndStmt:
			o := defaultOptions()
			if opts != nil {
				o = *opts
			}
			out, err := it.endStmt(o)
			if err != nil {
				it.stack = nil
				return nil, err
			}
			outputs = append(outputs, out)
			opts = nil
			contributed = false
		}
	}

	// Newline acts as an implicit statement terminator: anything this line
	// contributed finalizes now instead of leaking into the next line.
	if contributed {
		o := defaultOptions()
		if opts != nil {
			o = *opts
		}
		out, err := it.endStmt(o)
		if err != nil {
			it.stack = nil
			return nil, err
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// Eof signals the end of the input. If entries are still pending (for
// example pushed with AddData and never followed by a line), it finalizes
// one last statement with default options. Returns nil when nothing was
// pending.
func (it *Interpreter) Eof() (StmtOutput, error) {
	if len(it.stack) == 0 {
		return nil, nil
	}
	return it.endStmt(defaultOptions())
}

// endStmt finalizes the current statement: resolves the auto expression
// heuristic, selects a subset of the pending entries, evaluates each one and
// leaves the stack empty.
func (it *Interpreter) endStmt(opts options) (StmtOutput, error) {
	evalAsExpr := len(it.stack) == 1
	switch opts.evalExpr {
	case evalOn:
		evalAsExpr = true
	case evalOff:
		evalAsExpr = false
	}

	entries := it.stack
	it.stack = nil

	selected := selectEntries(it.rng, entries, opts)

	// With-replacement sampling can select the same entry more than once.
	// Classification is cached by id so a given entry is parsed at most once
	// per statement and its kind cannot change between duplicate draws. Each
	// draw still evaluates independently (a dice roll is re-rolled).
	cache := make(map[int]expression)

	samples := make(StmtOutput, 0, len(selected))
	for _, pe := range selected {
		var ex expression
		if !evalAsExpr {
			ex = expression{kind: exprText, text: pe.text}
		} else if c, ok := cache[pe.id]; ok {
			ex = c
		} else {
			var err error
			ex, err = parseExpr(pe.text)
			if err != nil {
				return nil, err
			}
			cache[pe.id] = ex
		}
		samples = append(samples, ex.eval(it.rng))
	}

	if opts.push {
		for _, s := range samples {
			it.AddData(s.Value())
		}
		return StmtOutput{}, nil
	}
	return samples, nil
}

// selectEntries picks the subset of entries a statement evaluates, in
// evaluation order. Entries keep their original insertion id.
func selectEntries(rng *rand.Rand, entries []pendingEntry, opts options) []pendingEntry {
	if len(entries) == 0 {
		return nil
	}

	n := len(entries)
	if !opts.amount.all {
		n = int(opts.amount.n)
	}

	// Fast path: without replacement and asking for the whole population
	// (or more), the answer is the population itself, shuffled unless the
	// original order is requested.
	if !opts.repeating && n >= len(entries) {
		sel := slices.Clone(entries)
		if !opts.keepOrder {
			rng.Shuffle(len(sel), func(i, j int) {
				sel[i], sel[j] = sel[j], sel[i]
			})
		}
		return sel
	}

	var sel []pendingEntry
	if opts.repeating {
		sel = make([]pendingEntry, 0, n)
		for i := 0; i < n; i++ {
			sel = append(sel, entries[rng.IntN(len(entries))])
		}
	} else {
		// Partial Fisher-Yates: the first n positions of the shuffled pool
		// are a uniform without-replacement sample.
		pool := slices.Clone(entries)
		for i := 0; i < n; i++ {
			j := i + rng.IntN(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		sel = pool[:n]
	}

	// Re-sort after sampling, never before: a without-replacement draw must
	// stay unbiased regardless of how the result is presented.
	if opts.keepOrder {
		sort.Slice(sel, func(i, j int) bool { return sel[i].id < sel[j].id })
	}
	return sel
}
