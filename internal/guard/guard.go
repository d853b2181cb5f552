// Package guard decides whether a session may open a storefront page, and
// where to send it when it may not.
package guard

import (
	"net/url"
	"strings"

	"github.com/javajoker/storefront-backend/internal/models"
)

type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessAdmin         Access = "admin"
)

const LoginPath = "/login"

// Route is a named page. Pattern segments starting with ':' match any single
// segment and a trailing "/*" matches any remainder.
type Route struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Access  Access `json:"access"`
}

var DefaultRoutes = []Route{
	{Name: "home", Pattern: "/", Access: AccessPublic},
	{Name: "shop", Pattern: "/shop", Access: AccessPublic},
	{Name: "product", Pattern: "/product/:id", Access: AccessPublic},
	{Name: "cart", Pattern: "/cart", Access: AccessPublic},
	{Name: "login", Pattern: LoginPath, Access: AccessPublic},
	{Name: "checkout", Pattern: "/checkout", Access: AccessAuthenticated},
	{Name: "order-confirmation", Pattern: "/order-confirmation/:id", Access: AccessAuthenticated},
	{Name: "profile", Pattern: "/profile", Access: AccessAuthenticated},
	{Name: "profile-orders", Pattern: "/profile/orders", Access: AccessAuthenticated},
	{Name: "profile-order", Pattern: "/profile/orders/:id", Access: AccessAuthenticated},
	{Name: "profile-addresses", Pattern: "/profile/addresses", Access: AccessAuthenticated},
	{Name: "profile-wishlist", Pattern: "/profile/wishlist", Access: AccessAuthenticated},
	{Name: "profile-settings", Pattern: "/profile/settings", Access: AccessAuthenticated},
	{Name: "admin", Pattern: "/admin", Access: AccessAdmin},
	{Name: "admin-section", Pattern: "/admin/*", Access: AccessAdmin},
}

type SessionState string

const (
	SessionAnonymous     SessionState = "anonymous"
	SessionPending       SessionState = "pending"
	SessionAuthenticated SessionState = "authenticated"
	SessionInvalid       SessionState = "invalid"
)

// Session is what the guard knows about the caller. A pending session has a
// token whose profile has not been fetched yet; it is trusted until that
// fetch fails.
type Session struct {
	State SessionState    `json:"state"`
	Role  models.UserRole `json:"role,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated || s.State == SessionPending
}

func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == models.UserRoleAdmin
}

type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeRedirect Outcome = "redirect"
	OutcomeDeny     Outcome = "deny"
)

type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Route    string  `json:"route,omitempty"`
	Location string  `json:"location,omitempty"`
}

type Guard struct {
	routes []Route
}

func New(routes []Route) *Guard {
	return &Guard{routes: routes}
}

func Default() *Guard {
	return New(DefaultRoutes)
}

// Match returns the first route whose pattern matches path.
func (g *Guard) Match(path string) (Route, bool) {
	clean := pathOnly(path)
	for _, r := range g.routes {
		if matches(r.Pattern, clean) {
			return r, true
		}
	}
	return Route{}, false
}

// Check decides whether session may open path. Unknown paths are public so
// the storefront can render its own not-found page.
func (g *Guard) Check(path string, session Session) Decision {
	route, ok := g.Match(path)
	if !ok {
		return Decision{Outcome: OutcomeAllow}
	}

	switch route.Access {
	case AccessAuthenticated:
		if !session.IsAuthenticated() {
			return Decision{Outcome: OutcomeRedirect, Route: route.Name, Location: LoginRedirect(path)}
		}
	case AccessAdmin:
		if !session.IsAuthenticated() {
			return Decision{Outcome: OutcomeRedirect, Route: route.Name, Location: LoginRedirect(path)}
		}
		if !session.IsAdmin() {
			return Decision{Outcome: OutcomeDeny, Route: route.Name}
		}
	case AccessPublic:
		if route.Pattern == LoginPath && session.IsAuthenticated() {
			return Decision{Outcome: OutcomeRedirect, Route: route.Name, Location: AfterLogin(redirectParam(path))}
		}
	}

	return Decision{Outcome: OutcomeAllow, Route: route.Name}
}

// LoginRedirect is the login page location that returns to path afterwards.
func LoginRedirect(path string) string {
	return LoginPath + "?redirect=" + url.QueryEscape(path)
}

// AfterLogin returns where to go once signed in. Only local paths are
// honoured; anything else, including the login page itself, goes home.
func AfterLogin(redirect string) string {
	if !isLocalPath(redirect) {
		return "/"
	}
	if pathOnly(redirect) == LoginPath {
		return "/"
	}
	return redirect
}

func isLocalPath(p string) bool {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func redirectParam(path string) string {
	u, err := url.Parse(path)
	if err != nil {
		return ""
	}
	return u.Query().Get("redirect")
}

func pathOnly(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func matches(pattern, path string) bool {
	if pattern == path {
		return true
	}

	pp := strings.Split(strings.Trim(pattern, "/"), "/")
	sp := strings.Split(strings.Trim(path, "/"), "/")

	for i, seg := range pp {
		if seg == "*" && i == len(pp)-1 {
			return len(sp) > i
		}
		if i >= len(sp) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if sp[i] == "" {
				return false
			}
			continue
		}
		if seg != sp[i] {
			return false
		}
	}
	return len(pp) == len(sp)
}
