// Command rq evaluates rng-query expressions.
//
//	rq "coin"
//	rq "a, b, c / 2"
//	cat names.txt | rq "/ 3"
//	rq            (interactive REPL when stdin is a terminal)
//
// Stdin is treated as data, one entry per line; with -e each line is
// evaluated as a query line instead. Configuration can also come from the
// environment: RQ_SEED, RQ_STMT_SEP, RQ_ENTRY_SEP, RQ_OPTIONS_SEP, NO_COLOR.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/peterh/liner"

	rngquery "github.com/Zheoni/rng-query"
)

const (
	appName     = "rq"
	historyFile = ".rq_history"
	promptMain  = "rq> "
)

type config struct {
	Seed       *uint64 `env:"RQ_SEED"`
	StmtSep    string  `env:"RQ_STMT_SEP"`
	EntrySep   string  `env:"RQ_ENTRY_SEP"`
	OptionsSep string  `env:"RQ_OPTIONS_SEP"`
	NoColor    *string `env:"NO_COLOR"`
}

var colorEnabled = true

func red(s string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func blue(s string) string {
	if !colorEnabled {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

func main() {
	os.Exit(run())
}

func run() int {
	hideExpr := flag.Bool("E", false, "print only the sampled value, not the expression")
	evalStdin := flag.Bool("e", false, "evaluate each stdin line as a query instead of data")
	seedStr := flag.String("seed", "", "seed for the pseudorandom generator")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	version := flag.Bool("version", false, "print the version")
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Println(rngquery.Version)
		return 0
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: bad environment: %v\n", appName, err)
		return 2
	}

	stdoutTTY := isTerminal(os.Stdout)
	colorEnabled = stdoutTTY && !*noColor && cfg.NoColor == nil

	it, err := makeInterpreter(cfg, *seedStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}

	query := strings.Join(flag.Args(), " ")
	stdinTTY := isTerminal(os.Stdin)

	if query == "" && stdinTTY {
		return repl(it, *hideExpr)
	}

	if !stdinTTY {
		if code := feedStdin(it, *evalStdin, *hideExpr); code != 0 {
			return code
		}
	}

	if query != "" {
		out, err := it.RunLine(query)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(rngquery.WrapErrorWithSource(err, query).Error()))
			return 1
		}
		printOutputs(out, *hideExpr)
	}

	out, err := it.Eof()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	if out != nil {
		printOutputs([]rngquery.StmtOutput{out}, *hideExpr)
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, `rng-query %s

Usage:
  %s [flags] [query]

A query is statements separated by ';', each a list of entries separated
by ',' with an optional options clause after '/'. Stdin adds one data
entry per line.

Flags:
`, rngquery.Version, appName)
	flag.PrintDefaults()
}

func makeInterpreter(cfg config, seedFlag string) (*rngquery.Interpreter, error) {
	var it *rngquery.Interpreter
	switch {
	case seedFlag != "":
		seed, err := strconv.ParseUint(seedFlag, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad seed: %w", err)
		}
		it = rngquery.NewSeeded(seed)
	case cfg.Seed != nil:
		it = rngquery.NewSeeded(*cfg.Seed)
	default:
		it = rngquery.NewInterpreter()
	}

	if cfg.StmtSep != "" {
		it.Sep.Stmt = firstRune(cfg.StmtSep)
	}
	if cfg.EntrySep != "" {
		it.Sep.Entry = firstRune(cfg.EntrySep)
	}
	if cfg.OptionsSep != "" {
		it.Sep.Options = firstRune(cfg.OptionsSep)
	}
	return it, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func feedStdin(it *rngquery.Interpreter, evalLines, hideExpr bool) int {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if evalLines {
			out, err := it.RunLine(line)
			if err != nil {
				fmt.Fprintln(os.Stderr, red(rngquery.WrapErrorWithSource(err, line).Error()))
				return 1
			}
			printOutputs(out, hideExpr)
		} else {
			it.AddData(line)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: read stdin: %v\n", appName, err)
		return 1
	}
	return 0
}

func printOutputs(outputs []rngquery.StmtOutput, hideExpr bool) {
	for _, out := range outputs {
		for _, sample := range out {
			if hideExpr {
				fmt.Println(blue(sample.Value()))
			} else {
				fmt.Println(blue(sample.String()))
			}
		}
	}
}

func repl(it *rngquery.Interpreter, hideExpr bool) int {
	fmt.Printf("rng-query %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.\n", rngquery.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q":
				return 0
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		out, err := it.RunLine(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(rngquery.WrapErrorWithSource(err, line).Error()))
			continue
		}
		printOutputs(out, hideExpr)
		ln.AppendHistory(line)
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
