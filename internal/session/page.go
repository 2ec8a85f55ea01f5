package session

import "strings"

// Page is one of the client's top-level screens.
type Page string

const (
	PageLogin    Page = "login"
	PageApp      Page = "app"
	PageSettings Page = "settings"
	PageNotFound Page = "notfound"
)

// Pages lists every recognized page.
var Pages = []Page{PageLogin, PageApp, PageSettings, PageNotFound}

// Path is the location a page is reachable at.
func (p Page) Path() string { return "/" + string(p) }

// RequiresAuth reports whether the page is only shown to a signed-in user.
func (p Page) RequiresAuth() bool { return p != PageLogin }

// Resolve maps a location path to a page. It is pure and total: a
// recognized segment gives its page, an empty path gives app or login
// depending on authentication, anything else gives notfound.
func Resolve(path string, authenticated bool) Page {
	seg := segment(path)
	if seg == "" {
		if authenticated {
			return PageApp
		}
		return PageLogin
	}
	for _, p := range Pages {
		if string(p) == seg {
			return p
		}
	}
	return PageNotFound
}

// guard redirects pages that do not fit the auth state: protected pages to
// login when signed out, login to app when signed in.
func guard(p Page, authenticated bool) Page {
	switch {
	case !authenticated && p.RequiresAuth():
		return PageLogin
	case authenticated && p == PageLogin:
		return PageApp
	}
	return p
}

// segment strips the query, the fragment and the surrounding slashes.
func segment(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.Trim(path, "/")
}
