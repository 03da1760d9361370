package domain

import "strings"

// RouteClass is the derived classification of an intercepted request.
// It is computed per request and never persisted.
type RouteClass int

const (
	ClassStatic RouteClass = iota
	ClassAPI
	ClassAuthRequired
	ClassGeneral
)

// String returns a human-readable representation of the class.
func (c RouteClass) String() string {
	switch c {
	case ClassStatic:
		return "STATIC"
	case ClassAPI:
		return "API"
	case ClassAuthRequired:
		return "AUTH_REQUIRED"
	case ClassGeneral:
		return "GENERAL"
	default:
		return "Unknown"
	}
}

// RouteTable holds the path-prefix tables that drive classification.
// Tables are immutable once built; hot reload swaps in a whole new table.
type RouteTable struct {
	// StaticPrefix covers fingerprinted assets (icons, scripts, styles).
	StaticPrefix string

	// APIPrefix covers data endpoints on the remote API server.
	APIPrefix string

	// AuthPrefixes lists page prefixes that require an authenticated session.
	AuthPrefixes []string

	// CacheableRoutes is the allow-list of API paths whose successful
	// responses may be stored in the api partition.
	CacheableRoutes []string

	// SessionCheckPath is the endpoint whose failure with no cached copy
	// yields the synthesized soft-offline response.
	SessionCheckPath string

	// OfflinePagePath is the static route served when no strategy can
	// otherwise satisfy a GET.
	OfflinePagePath string
}

// Classify maps a request path to a route class. First match wins:
// static prefix, then API prefix, then the auth-gated prefix list,
// else GENERAL. The mutation path (POST) is decided by method before
// classification is consulted.
func (t *RouteTable) Classify(path string) RouteClass {
	switch {
	case t.StaticPrefix != "" && strings.HasPrefix(path, t.StaticPrefix):
		return ClassStatic
	case t.APIPrefix != "" && strings.HasPrefix(path, t.APIPrefix):
		return ClassAPI
	case t.matchesAuth(path):
		return ClassAuthRequired
	default:
		return ClassGeneral
	}
}

func (t *RouteTable) matchesAuth(path string) bool {
	for _, p := range t.AuthPrefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Cacheable reports whether an API path is on the cacheable allow-list.
func (t *RouteTable) Cacheable(path string) bool {
	for _, r := range t.CacheableRoutes {
		if r == path {
			return true
		}
	}
	return false
}

// IsSessionCheck reports whether path is the session-check endpoint.
func (t *RouteTable) IsSessionCheck(path string) bool {
	return t.SessionCheckPath != "" && path == t.SessionCheckPath
}
