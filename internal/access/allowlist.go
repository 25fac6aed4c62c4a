package access

import "strings"

// Allowlist is an immutable set of path prefixes reachable while a gate
// is closed.
type Allowlist struct {
	prefixes []string
}

func NewAllowlist(prefixes ...string) Allowlist {
	cp := make([]string, len(prefixes))
	copy(cp, prefixes)
	return Allowlist{prefixes: cp}
}

// DefaultGateAllowlist covers the paths an unassigned space admin may
// still reach: the admin console, static assets, the notice page and
// logout.
func DefaultGateAllowlist() Allowlist {
	return NewAllowlist(
		"/admin/",
		"/static/",
		"/media/",
		DestNoSpacesNotice,
		"/api/auth/logout",
	)
}

func (a Allowlist) Allows(path string) bool {
	for _, p := range a.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
