// Package prompt implements the interactive surface of the workflow. All
// prompts run over an injected reader/writer pair, with validation failures
// reported and re-prompted locally rather than propagated.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Reader asks questions on w and reads answers from r.
type Reader struct {
	scanner *bufio.Scanner
	w       io.Writer
}

// New creates a prompt Reader. Nil r/w default to stdin/stdout.
func New(r io.Reader, w io.Writer) *Reader {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Reader{scanner: bufio.NewScanner(r), w: w}
}

// FilePath prompts until the answer names an existing file with the wanted
// extension (e.g. ".apk"). Bad answers are reported and re-asked; the only
// propagated error is input running out.
func (p *Reader) FilePath(label, wantExt string) (string, error) {
	for {
		answer, err := p.ask("%s (%s file): ", label, wantExt)
		if err != nil {
			return "", err
		}
		path := strings.TrimSpace(answer)
		if path == "" {
			continue
		}

		if !strings.EqualFold(ext(path), wantExt) {
			fmt.Fprintf(p.w, "%s is not a %s file\n", path, wantExt)
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			fmt.Fprintf(p.w, "%s does not exist\n", path)
			continue
		}
		return path, nil
	}
}

// SelectNames shows numbered options and reads a comma-separated selection
// of indexes or names. Empty input selects nothing; unknown tokens are
// reported and the whole selection re-asked.
func (p *Reader) SelectNames(label string, options []string) ([]string, error) {
	for i, opt := range options {
		fmt.Fprintf(p.w, "  [%d] %s\n", i+1, opt)
	}

	for {
		answer, err := p.ask("%s (comma-separated, empty for none): ", label)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(answer) == "" {
			return nil, nil
		}

		selected, bad := resolveSelection(answer, options)
		if bad != "" {
			fmt.Fprintf(p.w, "unknown option %q\n", bad)
			continue
		}
		return selected, nil
	}
}

// Confirm asks a yes/no question; empty input takes the default.
func (p *Reader) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		answer, err := p.ask("%s [%s]: ", label, hint)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, "please answer y or n")
	}
}

func (p *Reader) ask(format string, args ...any) (string, error) {
	fmt.Fprintf(p.w, format, args...)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

// resolveSelection maps a comma-separated answer onto options, returning the
// first unresolvable token when there is one.
func resolveSelection(answer string, options []string) (selected []string, bad string) {
	for _, token := range strings.Split(answer, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if n, err := strconv.Atoi(token); err == nil {
			if n < 1 || n > len(options) {
				return nil, token
			}
			selected = append(selected, options[n-1])
			continue
		}

		found := false
		for _, opt := range options {
			if strings.EqualFold(opt, token) {
				selected = append(selected, opt)
				found = true
				break
			}
		}
		if !found {
			return nil, token
		}
	}
	return selected, ""
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}
