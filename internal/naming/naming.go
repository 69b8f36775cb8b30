// Package naming holds the slug rule that turns test descriptions into
// method names. The suite library and the file:line resolver both depend on
// it, so a described test and a line lookup always agree on identity.
package naming

import (
	"regexp"
	"strings"
	"unicode"
)

// MethodPrefix marks methods synthesized from a description.
const MethodPrefix = "test_"

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9]+`)
	underscore = regexp.MustCompile(`_+`)
)

// Slug normalizes a description into an identity-safe token.
func Slug(description string) string {
	s := strings.ToLower(description)
	s = nonSlug.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return underscore.ReplaceAllString(s, "_")
}

// MethodName returns the method name used for a described test.
func MethodName(description string) string {
	return MethodPrefix + Slug(description)
}

// Identity joins a suite and a method into the registry key. An empty
// method means the suite itself, i.e. a plain top-level test function.
func Identity(suite, method string) string {
	if method == "" {
		return suite
	}
	return suite + "#" + method
}

// SplitIdentity is the inverse of Identity.
func SplitIdentity(identity string) (suite, method string) {
	suite, method, _ = strings.Cut(identity, "#")
	return suite, method
}

// FromTestName converts a go test name ("TestUser/test_it_passes") into an
// identity ("TestUser#test_it_passes").
func FromTestName(name string) string {
	return strings.Replace(name, "/", "#", 1)
}

// Describe turns a directly-named test function into a readable
// description: "TestUserLogin" and "Test_user_login" both become
// "user login".
func Describe(name string) string {
	name = strings.TrimPrefix(name, "Test")
	name = strings.TrimPrefix(name, "_")

	var words []string
	var current []rune
	runes := []rune(name)
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	return strings.Join(words, " ")
}
