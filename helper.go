package pagedriver

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
)

// URLMatch selects URLs for routing and navigation waits: a glob pattern
// string, a compiled regexp, or a predicate.
type URLMatch interface{}

type urlMatcher struct {
	raw       URLMatch
	re        *regexp.Regexp
	predicate func(string) bool
}

func newURLMatcher(match URLMatch) *urlMatcher {
	m := &urlMatcher{raw: match}
	switch v := match.(type) {
	case string:
		m.re = regexp.MustCompile("^" + globToRegex(v))
	case *regexp.Regexp:
		m.re = v
	case func(string) bool:
		m.predicate = v
	}
	return m
}

func (m *urlMatcher) matches(url string) bool {
	if m.predicate != nil {
		return m.predicate(url)
	}
	if m.re != nil {
		return m.re.MatchString(url)
	}
	return false
}

// globToRegex translates URL glob syntax: * matches within a path segment,
// ** crosses segments, ? matches a single character, {a,b} alternates.
func globToRegex(glob string) string {
	var sb strings.Builder
	inGroup := false
	tokens := []rune(glob)
	for i := 0; i < len(tokens); i++ {
		c := tokens[i]
		switch c {
		case '*':
			if i+1 < len(tokens) && tokens[i+1] == '*' {
				i++
				sb.WriteString(".*")
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString(".")
		case '{':
			inGroup = true
			sb.WriteString("(")
		case '}':
			inGroup = false
			sb.WriteString(")")
		case ',':
			if inGroup {
				sb.WriteString("|")
			} else {
				sb.WriteString("\\,")
			}
		case '.', '(', ')', '+', '|', '^', '$', '[', ']', '\\':
			sb.WriteString("\\")
			sb.WriteRune(c)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String() + "$"
}

const defaultTimeout = 30000 // milliseconds

// timeoutSettings resolves effective timeouts: own override, then parent
// chain, then the package default. Values are milliseconds, matching the
// protocol.
type timeoutSettings struct {
	mu                sync.Mutex
	parent            *timeoutSettings
	timeout           *float64
	navigationTimeout *float64
}

func newTimeoutSettings(parent *timeoutSettings) *timeoutSettings {
	return &timeoutSettings{parent: parent}
}

func (s *timeoutSettings) setDefaultTimeout(timeout float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = &timeout
}

func (s *timeoutSettings) setDefaultNavigationTimeout(timeout float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigationTimeout = &timeout
}

func (s *timeoutSettings) effectiveTimeout() float64 {
	s.mu.Lock()
	t := s.timeout
	s.mu.Unlock()
	if t != nil {
		return *t
	}
	if s.parent != nil {
		return s.parent.effectiveTimeout()
	}
	return defaultTimeout
}

func (s *timeoutSettings) effectiveNavigationTimeout() float64 {
	s.mu.Lock()
	t := s.navigationTimeout
	s.mu.Unlock()
	if t != nil {
		return *t
	}
	if s.parent != nil {
		return s.parent.effectiveNavigationTimeout()
	}
	return s.effectiveTimeout()
}

// isSafeCloseError reports whether err is the expected failure of a close
// call racing the target's own shutdown.
func isSafeCloseError(err error) bool {
	if errors.Is(err, ErrTargetClosed) {
		return true
	}
	msg := err.Error()
	return strings.HasSuffix(msg, "Browser has been closed") ||
		strings.HasSuffix(msg, "Target page, context or browser has been closed")
}

// matcherEqual compares the raw URLMatch values two registrations were made
// with. Predicates compare by function identity.
func matcherEqual(a, b URLMatch) bool {
	fa, okA := a.(func(string) bool)
	fb, okB := b.(func(string) bool)
	if okA || okB {
		return okA && okB && sameFunc(fa, fb)
	}
	return a == b
}

func sameFunc(a, b interface{}) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// isFunctionBody reports whether a JS expression should be sent as a
// function rather than evaluated as an expression.
func isFunctionBody(expression string) bool {
	expression = strings.TrimSpace(expression)
	return strings.HasPrefix(expression, "function") ||
		strings.HasPrefix(expression, "async ") ||
		strings.Contains(expression, "=>")
}
