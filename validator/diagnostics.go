package validator

import "strings"

// diagnostics accumulates per-path messages of the form "<path>: <what and
// why>" (spec §4.3.5). The accumulated string is stable enough to be
// asserted against in tests.
type diagnostics struct {
	lines []string
}

func (d *diagnostics) add(path, what string) {
	d.lines = append(d.lines, path+": "+what)
}

func (d *diagnostics) empty() bool { return len(d.lines) == 0 }

func (d *diagnostics) String() string {
	return strings.TrimRight(strings.Join(d.lines, "\n"), "\n")
}
