// Command merge-coverage combines the unit and integration coverage
// profiles into one. A block counts when any profile covers it; count and
// atomic profiles have their counts summed.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <coverage1.out> <coverage2.out> [coverage3.out...]\n", os.Args[0])
		os.Exit(1)
	}

	p := newProfile()
	for _, name := range os.Args[1:] {
		if err := p.addFile(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	w := bufio.NewWriter(os.Stdout)
	defer func() { _ = w.Flush() }()
	p.write(w)
}

// profile accumulates coverage blocks keyed by "file:start,end statements"
type profile struct {
	mode   string
	counts map[string]int
}

func newProfile() *profile {
	return &profile{counts: make(map[string]int)}
}

func (p *profile) addFile(name string) error {
	f, err := os.Open(name) //nolint:gosec // G304: profiles are the command's input
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if err := p.add(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *profile) add(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if mode, ok := strings.CutPrefix(line, "mode:"); ok {
			mode = strings.TrimSpace(mode)
			if p.mode != "" && p.mode != mode {
				return fmt.Errorf("mode %q does not match %q", mode, p.mode)
			}
			p.mode = mode
			continue
		}

		// path.go:line.col,line.col statements count
		i := strings.LastIndexByte(line, ' ')
		if i < 0 {
			continue
		}
		count, err := strconv.Atoi(line[i+1:])
		if err != nil {
			return fmt.Errorf("invalid count in %q", line)
		}

		key := line[:i]
		if p.mode == "set" {
			p.counts[key] = max(p.counts[key], min(count, 1))
		} else {
			p.counts[key] += count
		}
	}
	return scanner.Err()
}

// write prints the merged profile with blocks in a stable order
func (p *profile) write(w io.Writer) {
	mode := p.mode
	if mode == "" {
		mode = "set"
	}
	fmt.Fprintf(w, "mode: %s\n", mode)

	keys := make([]string, 0, len(p.counts))
	for key := range p.counts {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%s %d\n", key, p.counts[key])
	}
}
