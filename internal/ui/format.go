package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d in the largest unit it reaches, with at most
// two decimals and no trailing zeros: 100ns, 150μs, 10.5s. A value on a
// boundary belongs to the larger unit (1000ns is 1μs).
func FormatDuration(d time.Duration) string {
	ns := float64(d)

	var number float64
	var unit string
	switch {
	case ns < 1e3:
		number, unit = ns, "ns"
	case ns < 1e6:
		number, unit = ns/1e3, "μs"
	case ns < 1e9:
		number, unit = ns/1e6, "ms"
	default:
		number, unit = ns/1e9, "s"
	}

	s := fmt.Sprintf("%.2f", number)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s + unit
}

// Pluralize renders a count: "no runs", "1 run", "3 runs".
func Pluralize(word string, count int) string {
	switch count {
	case 0:
		return "no " + word + "s"
	case 1:
		return "1 " + word
	default:
		return fmt.Sprintf("%d %ss", count, word)
	}
}

// Statistics renders the timing line of a run. Rates are zero when no
// time has elapsed.
func Statistics(elapsed time.Duration, runs, assertions int) string {
	secs := elapsed.Seconds()
	var runRate, assertionRate float64
	if secs > 0 {
		runRate = float64(runs) / secs
		assertionRate = float64(assertions) / secs
	}
	return fmt.Sprintf("Finished in %.6fs, %.4f runs/s, %.4f assertions/s.", secs, runRate, assertionRate)
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "      " + line
	}
	return strings.Join(lines, "\n")
}
