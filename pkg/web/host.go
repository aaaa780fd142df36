package web

import (
	"fmt"
	"strings"
)

// AuthorityToHost strips the optional ":port" suffix from an HTTP
// authority (the Host header value), returning just the host part. An
// IPv6 literal host is bracketed ("[::1]:3902") and the brackets are
// preserved in the result; the scan for the port separator starts
// after the closing bracket rather than at the first colon, since an
// IPv6 address itself contains colons.
func AuthorityToHost(authority string) (string, error) {
	if authority == "" {
		return "", fmt.Errorf("web: authority is empty")
	}

	var splitAt int
	found := false

	if authority[0] == '[' {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", fmt.Errorf("web: authority %q has an illegal format", authority)
		}
		if end+1 < len(authority) {
			splitAt = end + 1
			found = true
		}
	} else if i := strings.IndexByte(authority, ':'); i >= 0 {
		splitAt = i
		found = true
	}

	if !found {
		return authority, nil
	}
	if authority[splitAt] != ':' {
		return "", fmt.Errorf("web: authority %q has an illegal format", authority)
	}
	return authority[:splitAt], nil
}

// HostToBucket strips root, a configured root domain suffix, from the
// end of host to recover the bucket name implied by virtual-hosted
// addressing. If host does not end with root (or is no longer than
// it), host is returned unchanged. root may or may not include its
// own leading dot; either way exactly one separating dot between the
// bucket name and root is consumed.
func HostToBucket(host, root string) string {
	if len(root) >= len(host) || !strings.HasSuffix(host, root) {
		return host
	}

	lenDiff := len(host) - len(root)
	missingStartingDot := len(root) == 0 || root[0] != '.'
	cursor := lenDiff
	if missingStartingDot {
		cursor--
	}
	return host[:cursor]
}
