package suite

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mt/internal/diff"
)

// Context is handed to every test body, setup and teardown. Assertions
// stop the test at the first failure.
type Context struct {
	t          *testing.T
	suite      *Suite
	memo       map[string]any
	assertions int
}

func newContext(t *testing.T, s *Suite) *Context {
	return &Context{t: t, suite: s, memo: make(map[string]any)}
}

// T returns the running subtest
func (c *Context) T() *testing.T { return c.t }

// Assertions returns the number of assertions made so far
func (c *Context) Assertions() int { return c.assertions }

// Get returns the value of a Let, computing it on first use within the
// test.
func (c *Context) Get(name string) any {
	c.t.Helper()
	if v, ok := c.memo[name]; ok {
		return v
	}
	l, ok := c.suite.lets[name]
	if !ok {
		c.Flunk(fmt.Sprintf("let(%s) is not defined", name))
	}
	v := l.fn(c)
	c.memo[name] = v
	return v
}

func (c *Context) fail(msg string, msgAndArgs []any) {
	c.t.Helper()
	if custom := message(msgAndArgs); custom != "" {
		msg = custom
	}
	c.t.Fatal(msg)
}

// Assert fails unless ok
func (c *Context) Assert(ok bool, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if !ok {
		c.fail("expected: truthy value\ngot: false", msgAndArgs)
	}
}

// Refute fails if ok
func (c *Context) Refute(ok bool, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if ok {
		c.fail("expected: falsy value\ngot: true", msgAndArgs)
	}
}

// Equal fails unless expected and actual are equal, showing a word diff
// of the two.
func (c *Context) Equal(expected, actual any, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if !assert.ObjectsAreEqual(expected, actual) {
		c.fail(diff.Render(expected, actual, c.suite.palette), msgAndArgs)
	}
}

// NoError fails if err is not nil
func (c *Context) NoError(err error, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if err != nil {
		c.fail("expected: no error\ngot: "+err.Error(), msgAndArgs)
	}
}

// ErrorIs fails unless err matches target
func (c *Context) ErrorIs(err, target error, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if !errors.Is(err, target) {
		c.fail(fmt.Sprintf("expected: error matching %v\ngot: %v", target, err), msgAndArgs)
	}
}

// Nil fails unless v is nil, including typed nil pointers
func (c *Context) Nil(v any, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	if !isNil(v) {
		c.fail("expected: nil\ngot: "+diff.Inspect(v), msgAndArgs)
	}
}

// Includes fails unless collection (a string, slice, array or map)
// contains item. Maps are searched by key.
func (c *Context) Includes(collection, item any, msgAndArgs ...any) {
	c.t.Helper()
	c.assertions++
	ok, found := includes(collection, item)
	switch {
	case !ok:
		c.fail(fmt.Sprintf("%s cannot include anything", diff.Inspect(collection)), msgAndArgs)
	case !found:
		c.fail(fmt.Sprintf("expected %s to include %s", diff.Inspect(collection), diff.Inspect(item)), msgAndArgs)
	}
}

// Flunk fails the test with msg
func (c *Context) Flunk(msg string) {
	c.t.Helper()
	c.assertions++
	c.t.Fatal(msg)
}

// Skip skips the test with msg as the reason
func (c *Context) Skip(msg string) {
	c.t.Helper()
	c.t.Skip(msg)
}

// SlowTest skips the test unless slow tests were asked for with --slow or
// MT_RUN_SLOW_TESTS.
func (c *Context) SlowTest() {
	c.t.Helper()
	if os.Getenv(RunSlowTestsEnv) != "" || c.suite.opts.Slow {
		return
	}
	c.Skip("slow test")
}

func message(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	if format, ok := msgAndArgs[0].(string); ok && len(msgAndArgs) > 1 {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs[0])
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

func includes(collection, item any) (ok, found bool) {
	if s, isString := collection.(string); isString {
		sub, isSub := item.(string)
		return true, isSub && strings.Contains(s, sub)
	}

	rv := reflect.ValueOf(collection)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if assert.ObjectsAreEqual(rv.Index(i).Interface(), item) {
				return true, true
			}
		}
		return true, false
	case reflect.Map:
		for _, key := range rv.MapKeys() {
			if assert.ObjectsAreEqual(key.Interface(), item) {
				return true, true
			}
		}
		return true, false
	}
	return false, false
}
