package pagedriver

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLMatcherGlob(t *testing.T) {
	tests := []struct {
		glob  string
		url   string
		match bool
	}{
		{"https://example.com", "https://example.com", true},
		{"https://example.com", "https://example.com/path", false},
		{"**/*.png", "https://example.com/img/logo.png", true},
		{"**/*.png", "https://example.com/img/logo.jpg", false},
		{"**/api/**", "https://example.com/api/v1/users", true},
		{"https://example.com/?page", "https://example.com/1page", true},
		{"**/*.{png,jpg}", "https://cdn.example.com/a.jpg", true},
		{"**/*.{png,jpg}", "https://cdn.example.com/a.gif", false},
		{"https://example.com/a+b", "https://example.com/a+b", true},
	}
	for _, tt := range tests {
		m := newURLMatcher(tt.glob)
		assert.Equal(t, tt.match, m.matches(tt.url), "glob %q url %q", tt.glob, tt.url)
	}
}

func TestURLMatcherRegexpAndPredicate(t *testing.T) {
	re := regexp.MustCompile(`/users/\d+$`)
	m := newURLMatcher(re)
	assert.True(t, m.matches("https://example.com/users/42"))
	assert.False(t, m.matches("https://example.com/users/alice"))

	calls := 0
	m = newURLMatcher(func(url string) bool {
		calls++
		return url == "exact"
	})
	assert.True(t, m.matches("exact"))
	assert.False(t, m.matches("other"))
	assert.Equal(t, 2, calls)
}

func TestMatcherEqual(t *testing.T) {
	assert.True(t, matcherEqual("**/*.png", "**/*.png"))
	assert.False(t, matcherEqual("**/*.png", "**/*.jpg"))

	re := regexp.MustCompile("x")
	assert.True(t, matcherEqual(re, re))
	assert.False(t, matcherEqual(re, regexp.MustCompile("x")))

	f := func(string) bool { return true }
	g := func(string) bool { return true }
	assert.True(t, matcherEqual(f, f))
	assert.False(t, matcherEqual(f, g))
	assert.False(t, matcherEqual(f, "**"))
}

func TestTimeoutSettingsChain(t *testing.T) {
	parent := newTimeoutSettings(nil)
	child := newTimeoutSettings(parent)

	assert.Equal(t, float64(defaultTimeout), child.effectiveTimeout())
	assert.Equal(t, float64(defaultTimeout), child.effectiveNavigationTimeout())

	parent.setDefaultTimeout(5000)
	assert.Equal(t, float64(5000), child.effectiveTimeout())
	// Navigation falls back to the regular timeout when unset.
	assert.Equal(t, float64(5000), parent.effectiveNavigationTimeout())

	child.setDefaultTimeout(1000)
	assert.Equal(t, float64(1000), child.effectiveTimeout())
	assert.Equal(t, float64(5000), parent.effectiveTimeout())

	parent.setDefaultNavigationTimeout(9000)
	assert.Equal(t, float64(9000), child.effectiveNavigationTimeout())
}

func TestIsFunctionBody(t *testing.T) {
	assert.True(t, isFunctionBody("function() { return 1 }"))
	assert.True(t, isFunctionBody("  async () => 1"))
	assert.True(t, isFunctionBody("x => x * 2"))
	assert.False(t, isFunctionBody("document.title"))
	assert.False(t, isFunctionBody("1 + 2"))
}

func TestIsSafeCloseError(t *testing.T) {
	require.True(t, isSafeCloseError(newTargetClosedError("")))
	require.True(t, isSafeCloseError(&Error{Name: "Error", Message: "Browser has been closed"}))
	require.True(t, isSafeCloseError(&Error{Name: "Error", Message: "Target page, context or browser has been closed"}))
	require.False(t, isSafeCloseError(&Error{Name: "Error", Message: "net::ERR_FAILED"}))
}
