// Package filter implements name selection the way minitest does it: a
// pattern wrapped in slashes is a regular expression, anything else must
// equal the method name or the full identity.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled name pattern. The zero value matches nothing.
type Pattern struct {
	raw   string
	re    *regexp.Regexp
	exact string
}

// Parse compiles a name pattern. An empty pattern yields nil.
func Parse(raw string) (*Pattern, error) {
	if raw == "" {
		return nil, nil
	}
	p := &Pattern{raw: raw}
	if len(raw) >= 2 && strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") {
		re, err := regexp.Compile(raw[1 : len(raw)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", raw, err)
		}
		p.re = re
		return p, nil
	}
	p.exact = raw
	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p *Pattern) String() string {
	if p == nil {
		return ""
	}
	return p.raw
}

// MatchString matches a single candidate.
func (p *Pattern) MatchString(s string) bool {
	if p == nil {
		return false
	}
	if p.re != nil {
		return p.re.MatchString(s)
	}
	return p.exact == s
}

// Match reports whether the method name or the identity matches.
func (p *Pattern) Match(method, identity string) bool {
	if p == nil {
		return false
	}
	return (method != "" && p.MatchString(method)) || p.MatchString(identity)
}

// Selector combines an include and an exclude pattern
type Selector struct {
	Include *Pattern
	Exclude *Pattern
}

// NewSelector parses both patterns.
func NewSelector(include, exclude string) (*Selector, error) {
	in, err := Parse(include)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	ex, err := Parse(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Selector{Include: in, Exclude: ex}, nil
}

// Active reports whether the selector filters anything.
func (s *Selector) Active() bool {
	return s != nil && (s.Include != nil || s.Exclude != nil)
}

// Selects reports whether a test is kept.
func (s *Selector) Selects(method, identity string) bool {
	if s == nil {
		return true
	}
	if s.Include != nil && !s.Include.Match(method, identity) {
		return false
	}
	if s.Exclude != nil && s.Exclude.Match(method, identity) {
		return false
	}
	return true
}

// Only renders identities as a single alternation pattern, "/id1|id2/".
func Only(identities []string) string {
	if len(identities) == 0 {
		return ""
	}
	return "/" + strings.Join(identities, "|") + "/"
}

// Exactly renders identities as an anchored alternation that matches each
// identity as a whole, "/^(?:id1|id2)$/".
func Exactly(identities []string) string {
	if len(identities) == 0 {
		return ""
	}
	quoted := make([]string, len(identities))
	for i, id := range identities {
		quoted[i] = regexp.QuoteMeta(id)
	}
	return "/^(?:" + strings.Join(quoted, "|") + ")$/"
}
