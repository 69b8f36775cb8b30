// Package diff computes word-level differences between the printed forms of
// two values and renders them as colorized expected/actual lines.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"mt/internal/palette"
)

// Op is the kind of a diff segment
type Op byte

const (
	Equal   Op = '='
	Delete  Op = '-'
	Insert  Op = '+'
	Replace Op = '!'
)

// Segment is a run of tokens sharing one operation. Old holds the expected
// side, New the actual side.
type Segment struct {
	Op  Op
	Old string
	New string
}

var tokenPattern = regexp.MustCompile(`\w+|\W+`)

// Tokenize splits s into alternating runs of word and non-word characters.
func Tokenize(s string) []string {
	return tokenPattern.FindAllString(s, -1)
}

// Strings diffs two strings token by token. Tokens are aligned along a
// longest common subsequence, so scattered matches are kept over a single
// long contiguous block.
func Strings(expected, actual string) []Segment {
	alphabet := make(map[string]rune)
	tokens := make(map[rune]string)
	encode := func(toks []string) []rune {
		runes := make([]rune, len(toks))
		for i, tok := range toks {
			r, ok := alphabet[tok]
			if !ok {
				r = tokenRune(len(alphabet))
				alphabet[tok] = r
				tokens[r] = tok
			}
			runes[i] = r
		}
		return runes
	}
	decode := func(text string) string {
		var sb strings.Builder
		for _, r := range text {
			sb.WriteString(tokens[r])
		}
		return sb.String()
	}

	a, b := encode(Tokenize(expected)), encode(Tokenize(actual))
	dmp := diffmatchpatch.New()
	// No deadline: the speedup heuristics drop minimality
	dmp.DiffTimeout = 0

	var segments []Segment
	for _, d := range dmp.DiffMainRunes(a, b, false) {
		text := decode(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segments = append(segments, Segment{Op: Equal, Old: text, New: text})
		case diffmatchpatch.DiffDelete:
			segments = change(segments, text, "")
		case diffmatchpatch.DiffInsert:
			segments = change(segments, "", text)
		}
	}
	return segments
}

// change appends a deletion or insertion, folding adjacent changes into
// one replacement.
func change(segments []Segment, del, ins string) []Segment {
	if n := len(segments); n > 0 && segments[n-1].Op != Equal {
		last := &segments[n-1]
		last.Old += del
		last.New += ins
		if last.Old != "" && last.New != "" {
			last.Op = Replace
		}
		return segments
	}
	op := Delete
	if del == "" {
		op = Insert
	}
	return append(segments, Segment{Op: op, Old: del, New: ins})
}

// tokenRune maps the i-th distinct token to a rune that survives a round
// trip through a string.
func tokenRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// Inspect prints a value the way it is shown in a diff. Single-line strings
// are quoted; multi-line strings are shown as they are.
func Inspect(v interface{}) string {
	if s, ok := v.(string); ok {
		if strings.Contains(s, "\n") {
			return s
		}
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%#v", v)
}

// Render returns the two-line expected/actual view of a diff between the
// printed forms of expected and actual.
func Render(expected, actual interface{}, p palette.Palette) string {
	var exp, act strings.Builder
	for _, seg := range Strings(Inspect(expected), Inspect(actual)) {
		switch seg.Op {
		case Equal:
			exp.WriteString(seg.Old)
			act.WriteString(seg.New)
		case Delete:
			exp.WriteString(p.Deleted(seg.Old))
		case Insert:
			act.WriteString(p.Inserted(seg.New))
		case Replace:
			exp.WriteString(p.Deleted(seg.Old))
			act.WriteString(p.Inserted(seg.New))
		}
	}

	return p.Red("expected: ") + " " + exp.String() + "\n" +
		p.Red("  actual: ") + " " + act.String()
}
