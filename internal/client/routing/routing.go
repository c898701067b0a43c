// Package routing decides which screen group a user may see for the current
// session and applies the decision through a Router.
package routing

import (
	"strings"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/models"
)

const (
	GroupAuth = "(auth)"
	GroupTabs = "(tabs)"

	SubRouteLogin      = "login"
	SubRouteOnboarding = "onboarding"

	RouteLogin      = "/(auth)/login"
	RouteOnboarding = "/(auth)/onboarding"
	RouteTabs       = "/(tabs)"
)

// Location is a route split into its group and first sub-route segment.
type Location struct {
	Group    string
	SubRoute string
}

func ParseLocation(route string) Location {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	loc := Location{Group: parts[0]}
	if len(parts) > 1 {
		loc.SubRoute = parts[1]
	}
	return loc
}

func (l Location) Path() string {
	if l.SubRoute == "" {
		return "/" + l.Group
	}
	return "/" + l.Group + "/" + l.SubRoute
}

// Target is a routing decision. A zero Target means stay.
type Target struct {
	Route    string
	Redirect bool
}

func redirect(route string) Target { return Target{Route: route, Redirect: true} }

// Decide returns where the user must be for session while at group and
// subRoute. It is pure and idempotent.
//
// A user already on the onboarding screen is never redirected, even if
// the cached session still reports onboarding as incomplete.
func Decide(session *models.Session, group, subRoute string) Target {
	if session == nil {
		if group == GroupAuth {
			return Target{}
		}
		return redirect(RouteLogin)
	}

	if subRoute == SubRouteOnboarding {
		return Target{}
	}
	if !session.User.Metadata.OnboardingCompleted() {
		return redirect(RouteOnboarding)
	}
	if group == GroupAuth && subRoute == SubRouteLogin {
		return redirect(RouteTabs)
	}
	return Target{}
}

// Router performs navigation.
type Router interface {
	Replace(route string)
}

type RouterFunc func(route string)

func (f RouterFunc) Replace(route string) { f(route) }

// Navigator tracks the current location and applies routing decisions,
// skipping redirects to the location it is already on.
type Navigator struct {
	mu      sync.Mutex
	router  Router
	current Location
}

func NewNavigator(router Router, initial string) *Navigator {
	return &Navigator{router: router, current: ParseLocation(initial)}
}

func (n *Navigator) Location() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Evaluate decides for session at the current location and applies the
// result. It reports whether a navigation happened.
func (n *Navigator) Evaluate(session *models.Session) bool {
	n.mu.Lock()
	loc := n.current
	n.mu.Unlock()
	return n.Apply(Decide(session, loc.Group, loc.SubRoute))
}

// Apply follows t if it is a redirect to a different location.
func (n *Navigator) Apply(t Target) bool {
	if !t.Redirect {
		return false
	}
	return n.replace(t.Route)
}

// Navigate moves to route on user request.
func (n *Navigator) Navigate(route string) bool {
	return n.replace(route)
}

func (n *Navigator) replace(route string) bool {
	loc := ParseLocation(route)

	n.mu.Lock()
	if loc == n.current {
		n.mu.Unlock()
		return false
	}
	n.current = loc
	n.mu.Unlock()

	n.router.Replace(loc.Path())
	return true
}
