package utils

import "testing"

func TestKeyMatch(t *testing.T) {
	cases := []struct {
		key     string
		pattern string
		want    bool
	}{
		{"/foo", "/foo", true},
		{"/foo", "/foo*", true},
		{"/foo", "/foo/*", false},
		{"/foo/bar", "/foo/*", true},
		{"/foobar", "/foo*", true},
		{"/foobar", "/foo/*", false},
		{"/bar", "/foo/*", false},
	}
	for _, c := range cases {
		if got := KeyMatch(c.key, c.pattern); got != c.want {
			t.Fatalf("KeyMatch(%q, %q) = %v, want %v", c.key, c.pattern, got, c.want)
		}
	}
}

func TestKeyMatch2(t *testing.T) {
	cases := []struct {
		key     string
		pattern string
		want    bool
	}{
		{"/foo/bar", "/foo/*", true},
		{"/foo/bar/baz", "/foo/*", true},
		{"/foo/bar", "/foo/:id", true},
		{"/foo/bar/baz", "/foo/:id", false},
		{"/foo/bar/baz", "/foo/:id/baz", true},
		{"/foo/bar", "/foo/bar", true},
		{"/foo/bar", "/bar/:id", false},
		{"/foo", "/foo/*", false},
	}
	for _, c := range cases {
		if got := KeyMatch2(c.key, c.pattern); got != c.want {
			t.Fatalf("KeyMatch2(%q, %q) = %v, want %v", c.key, c.pattern, got, c.want)
		}
	}
}

func TestRegexMatch(t *testing.T) {
	if !RegexMatch("/topic/create", "/topic/create.*") {
		t.Fatalf("expected regex match")
	}
	if RegexMatch("/topic/create", "/managed/.*") {
		t.Fatalf("unexpected regex match")
	}
	if RegexMatch("/foo", "([") {
		t.Fatalf("invalid pattern must not match")
	}
}

func TestGlobMatch(t *testing.T) {
	if !GlobMatch("data1", "data*") {
		t.Fatalf("expected glob match")
	}
	if GlobMatch("other", "data*") {
		t.Fatalf("unexpected glob match")
	}
}

func TestIPMatch(t *testing.T) {
	cases := []struct {
		ip      string
		pattern string
		want    bool
	}{
		{"192.168.2.123", "192.168.2.0/24", true},
		{"192.168.3.123", "192.168.2.0/24", false},
		{"10.0.0.5", "10.0.0.5", true},
		{"10.0.0.5", "10.0.0.6", false},
		{"not-an-ip", "10.0.0.0/8", false},
		{"10.0.0.5", "bad/cidr", false},
	}
	for _, c := range cases {
		if got := IPMatch(c.ip, c.pattern); got != c.want {
			t.Fatalf("IPMatch(%q, %q) = %v, want %v", c.ip, c.pattern, got, c.want)
		}
	}
}
