// Package suite declares tests by description on top of the testing
// package.
//
// A suite is built inside a regular top-level test function and run with
// Run:
//
//	func TestUser(t *testing.T) {
//	    s := suite.New(t)
//
//	    s.Let("user", func(c *suite.Context) any { return NewUser("john") })
//
//	    s.Setup(func(c *suite.Context) { // runs before every test
//	    })
//
//	    s.Test("is valid", func(c *suite.Context) {
//	        c.Assert(c.Get("user").(*User).Valid())
//	    })
//
//	    s.Test("sends a welcome email") // fails until implemented
//
//	    s.Run()
//	}
//
// Every description becomes a subtest named by the slug rule: "is valid"
// runs as TestUser/test_is_valid and is known to the mt runner as
// TestUser#test_is_valid. Declaring the same description twice in one
// suite panics with a *ConfigError.
//
// Started by mt, a suite also shuffles its tests by the run's seed, applies
// the --name and --exclude filters, skips slow tests unless --slow is
// given and reports its assertion counts and timings back to the runner.
// Started by plain go test, tests run in declaration order.
package suite
