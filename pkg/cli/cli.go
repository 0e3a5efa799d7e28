// Package cli implements the funmatch command: match a JSON value read from
// stdin against a pattern argument or a YAML ruleset.
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/funmatch"
	"github.com/funvibe/funmatch/pkg/ruleset"
)

// Exit codes: 0 matched, 1 no match, 2 usage or pattern error.
const (
	ExitMatch   = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// Run executes the command line and returns its exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("funmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesPath := fs.String("rules", "", "match against a YAML ruleset instead of a pattern argument")
	matchAll := fs.Bool("all", false, "with -rules, report every matching rule instead of the first")
	compact := fs.Bool("compact", false, "force compact output even on a terminal")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: funmatch [flags] PATTERN  (reads a JSON value from stdin)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return ExitError
	}

	source, err := readSource(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "funmatch: %v\n", err)
		return ExitError
	}

	pretty := !*compact && prettyDefault(stdout)

	if *rulesPath != "" {
		return runRules(*rulesPath, *matchAll, source, stdout, stderr, pretty)
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return ExitError
	}

	engine := funmatch.New()
	scope, err := engine.Match(fs.Arg(0), source)
	if err != nil {
		if funmatch.IsNoMatch(err) {
			fmt.Fprintf(stderr, "funmatch: no match: %v\n", err)
			return ExitNoMatch
		}
		fmt.Fprintf(stderr, "funmatch: %v\n", err)
		return ExitError
	}
	writeJSON(stdout, scope, pretty)
	return ExitMatch
}

func runRules(path string, all bool, source interface{}, stdout, stderr io.Writer, pretty bool) int {
	rs, err := ruleset.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "funmatch: %v\n", err)
		return ExitError
	}

	type hit struct {
		Rule     string                 `json:"rule"`
		ID       string                 `json:"id"`
		Tags     []string               `json:"tags,omitempty"`
		Bindings map[string]interface{} `json:"bindings"`
	}

	if all {
		results, err := rs.MatchAll(source)
		if err != nil {
			fmt.Fprintf(stderr, "funmatch: %v\n", err)
			return ExitError
		}
		if len(results) == 0 {
			return ExitNoMatch
		}
		hits := make([]hit, 0, len(results))
		for _, r := range results {
			hits = append(hits, hit{Rule: r.Rule.Name, ID: r.Rule.ID, Tags: r.Rule.Tags, Bindings: r.Bindings})
		}
		writeJSON(stdout, hits, pretty)
		return ExitMatch
	}

	result, ok, err := rs.Match(source)
	if err != nil {
		fmt.Fprintf(stderr, "funmatch: %v\n", err)
		return ExitError
	}
	if !ok {
		return ExitNoMatch
	}
	writeJSON(stdout, hit{Rule: result.Rule.Name, ID: result.Rule.ID, Tags: result.Rule.Tags, Bindings: result.Bindings}, pretty)
	return ExitMatch
}

func readSource(stdin io.Reader) (interface{}, error) {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, err
	}
	var source interface{}
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("stdin is not valid JSON: %w", err)
	}
	return source, nil
}

// prettyDefault indents output when it lands on a terminal; pipes get one
// compact line.
func prettyDefault(stdout io.Writer) bool {
	f, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v interface{}, pretty bool) {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.Encode(v)
}
