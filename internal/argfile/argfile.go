// Package argfile expands @file command-line arguments.
package argfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Prefix marks an argument naming a file of arguments.
const Prefix = "@"

// Expand replaces every argument of the form @path with the non-empty lines
// of path, one argument per line. Lines are used verbatim apart from a
// trailing carriage return. Expanded lines are not expanded again.
func Expand(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		path, ok := strings.CutPrefix(arg, Prefix)
		if !ok || path == "" {
			out = append(out, arg)
			continue
		}
		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("argfile: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("argfile: read %s: %w", path, err)
	}
	return lines, nil
}
