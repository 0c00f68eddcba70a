package utils

import (
	"net"
	"path"
	"regexp"
	"strings"
)

// KeyMatch checks whether key1 matches the pattern key2, where key2 may end
// with a '*' wildcard. "/foo/bar" matches "/foo/*".
func KeyMatch(key1, key2 string) bool {
	i := strings.Index(key2, "*")
	if i == -1 {
		return key1 == key2
	}
	if len(key1) > i {
		return key1[:i] == key2[:i]
	}
	return key1 == key2[:i]
}

// KeyMatch2 matches a value against a pattern containing '*' wildcards and
// ':' parameters. Parameters match a single path segment (up to the next '/'),
// a trailing "/*" matches the whole remaining hierarchy. "/foo/bar" matches
// "/foo/:id" and "/foo/*".
func KeyMatch2(value, pattern string) bool {
	vIndex, pIndex := 0, 0
	vLen, pLen := len(value), len(pattern)

	for pIndex < pLen {
		switch pattern[pIndex] {
		case '*':
			if pIndex == pLen-1 {
				return true
			}
			for vIndex < vLen && value[vIndex] != '/' {
				vIndex++
			}
			pIndex++
		case ':':
			// consume the parameter name, then one value segment
			pIndex++
			for pIndex < pLen && pattern[pIndex] != '/' {
				pIndex++
			}
			for vIndex < vLen && value[vIndex] != '/' {
				vIndex++
			}
		default:
			if vIndex < vLen && pattern[pIndex] == value[vIndex] {
				vIndex++
				pIndex++
			} else {
				return false
			}
		}
	}

	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "/*"))
	}
	return vIndex == vLen && pIndex == pLen
}

// RegexMatch checks whether key1 matches the regular expression key2.
// An invalid pattern reports no match.
func RegexMatch(key1, key2 string) bool {
	matched, err := regexp.MatchString(key2, key1)
	if err != nil {
		return false
	}
	return matched
}

// GlobMatch checks whether key1 matches the shell glob pattern key2.
func GlobMatch(key1, key2 string) bool {
	matched, err := path.Match(key2, key1)
	if err != nil {
		return false
	}
	return matched
}

// IPMatch checks whether the IP address ip falls inside the CIDR range cidr.
// A bare address as the pattern requires exact equality.
func IPMatch(ip, cidr string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if !strings.Contains(cidr, "/") {
		other := net.ParseIP(cidr)
		return other != nil && parsed.Equal(other)
	}
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	return network.Contains(parsed)
}
