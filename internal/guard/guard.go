// Package guard decides whether a visitor may see a session-only page.
package guard

import (
	"net/url"
	"strings"

	"github.com/healthy-eats/storefront/internal/domain/user"
)

// LoginPath is where unauthenticated visitors are sent
const LoginPath = "/login"

// DefaultReturnPath is used after login when no origin was recorded
const DefaultReturnPath = "/products"

// Outcome is what a guarded route should do
type Outcome int

const (
	// Wait means the session is still being restored: render nothing
	Wait Outcome = iota
	// Redirect sends the visitor to the login page
	Redirect
	// Render shows the guarded content
	Render
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide. Location is set only for Redirect.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide maps session state to an outcome. target is the path (and query) the
// visitor asked for; it is carried to the login page so a successful login can
// return there.
func Decide(loading bool, current *user.User, target string) Decision {
	if loading {
		return Decision{Outcome: Wait}
	}
	if current == nil {
		return Decision{Outcome: Redirect, Location: LoginURL(target)}
	}
	return Decision{Outcome: Render}
}

// LoginURL builds the login location remembering where the visitor came from
func LoginURL(from string) string {
	from = SafeReturnPath(from)
	return LoginPath + "?" + url.Values{"from": {from}}.Encode()
}

// SafeReturnPath accepts only local absolute paths and falls back to the
// catalog. Protocol-relative and absolute URLs would turn login into an open
// redirect. Browsers drop tab, CR and LF from URLs and read a backslash as a
// slash, so a path carrying any of them is rejected outright.
func SafeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") {
		return DefaultReturnPath
	}
	if strings.ContainsFunc(from, unsafeInPath) {
		return DefaultReturnPath
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultReturnPath
	}
	if strings.HasPrefix(from, LoginPath) {
		return DefaultReturnPath
	}
	return from
}

func unsafeInPath(r rune) bool {
	return r < 0x20 || r == 0x7f || r == '\\'
}
