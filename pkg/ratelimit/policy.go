package ratelimit

import "time"

// Policy declares the rate limit an auth module wants applied to its routes.
// Modules expose their policy; the host decides where and how to enforce it.
type Policy struct {
	// Group names the shared bucket. Routes under the same group drain one
	// counter per client.
	Group string
	// PathPrefixes lists the route prefixes the policy covers, relative to
	// the module mount point.
	PathPrefixes []string
	// Window and Max define the fixed window.
	Window time.Duration
	Max    int
}

// Covers reports whether the policy applies to the given path.
func (p Policy) Covers(path string) bool {
	for _, prefix := range p.PathPrefixes {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
