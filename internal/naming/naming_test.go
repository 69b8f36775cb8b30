package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    string
	}{
		{name: "plain words", description: "it passes", expected: "it_passes"},
		{name: "upper case and punctuation", description: "IT PASSES", expected: "it_passes"},
		{name: "repeated spaces and bangs", description: "it   passes!!", expected: "it_passes"},
		{name: "leading punctuation", description: "--it passes--", expected: "it_passes"},
		{name: "digits survive", description: "handles 42 items", expected: "handles_42_items"},
		{name: "unicode becomes separator", description: "café au lait", expected: "caf_au_lait"},
		{name: "only punctuation", description: "?!", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.description))
		})
	}
}

func TestSlug_Idempotent(t *testing.T) {
	for _, description := range []string{"it   passes!!", "IT PASSES", "Some__Thing  else", "_x_"} {
		once := Slug(description)
		assert.Equal(t, once, Slug(once), description)
	}
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "test_it_passes", MethodName("it   passes!!"))
	assert.Equal(t, MethodName("it   passes!!"), MethodName("IT PASSES"))
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "TestUser#test_it_passes", Identity("TestUser", "test_it_passes"))
	assert.Equal(t, "TestPlain", Identity("TestPlain", ""))

	suite, method := SplitIdentity("TestUser#test_it_passes")
	assert.Equal(t, "TestUser", suite)
	assert.Equal(t, "test_it_passes", method)

	suite, method = SplitIdentity("TestPlain")
	assert.Equal(t, "TestPlain", suite)
	assert.Empty(t, method)
}

func TestFromTestName(t *testing.T) {
	assert.Equal(t, "TestUser#test_it_passes", FromTestName("TestUser/test_it_passes"))
	assert.Equal(t, "TestTable#case/nested", FromTestName("TestTable/case/nested"))
	assert.Equal(t, "TestPlain", FromTestName("TestPlain"))
}

func TestDescribe(t *testing.T) {
	tests := map[string]string{
		"TestUserLogin":    "user login",
		"Test_user_login":  "user login",
		"TestParseHTTPURL": "parse httpurl",
		"TestHTTPServer":   "http server",
		"Test":             "",
	}
	for name, expected := range tests {
		assert.Equal(t, expected, Describe(name), name)
	}
}
