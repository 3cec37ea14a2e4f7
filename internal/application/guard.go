package application

import (
	"errors"
	"net/http"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
)

// GuardState is the admission verdict for a resolved session.
type GuardState string

const (
	GuardLoading    GuardState = "LOADING"
	GuardAnonymous  GuardState = "ANONYMOUS"
	GuardUnverified GuardState = "UNVERIFIED"
	GuardNoOrg      GuardState = "NO_ORG"
	GuardAdmitted   GuardState = "ADMITTED"
)

// Evaluate is a pure function of the state; the checks are ordered so an
// unverified identity is never admitted, whatever its organization.
func Evaluate(st *entity.SessionState) GuardState {
	switch {
	case st == nil:
		return GuardAnonymous
	case st.Loading:
		return GuardLoading
	case st.Identity == nil:
		return GuardAnonymous
	case !st.Identity.IsVerified():
		return GuardUnverified
	case st.Organization == nil:
		return GuardNoOrg
	default:
		return GuardAdmitted
	}
}

// Redirect is the client route each state sends the user to. UNVERIFIED
// renders an interstitial in place, LOADING waits.
func (g GuardState) Redirect() string {
	switch g {
	case GuardAnonymous:
		return "/login"
	case GuardNoOrg:
		return "/onboarding"
	case GuardAdmitted:
		return "/dashboard"
	}
	return ""
}

// Denial describes how a route group rejects a state.
type Denial struct {
	Status   int
	Code     string
	Message  string
	Redirect string
}

// Admit decides whether a route group accepting want lets st through.
func Admit(g GuardState, want GuardState) (Denial, bool) {
	if g == want {
		return Denial{}, true
	}
	switch g {
	case GuardLoading:
		return Denial{Status: http.StatusServiceUnavailable, Code: "session_loading", Message: "session is still loading"}, false
	case GuardAnonymous:
		return Denial{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "sign in required", Redirect: g.Redirect()}, false
	case GuardUnverified:
		return Denial{Status: http.StatusForbidden, Code: "email_not_verified", Message: "please verify your email address"}, false
	case GuardNoOrg:
		return Denial{Status: http.StatusForbidden, Code: "organization_required", Message: "create an organization first", Redirect: g.Redirect()}, false
	case GuardAdmitted:
		return Denial{Status: http.StatusConflict, Code: "organization_exists", Message: "organization already set up", Redirect: g.Redirect()}, false
	}
	return Denial{Status: http.StatusForbidden, Code: "forbidden", Message: "forbidden"}, false
}

// OrganizationUnverifiedMessage is shown when a membership's organization
// cannot be read, whether it is gone or hidden from the caller.
const OrganizationUnverifiedMessage = "Could not verify organization details. Please try refreshing or contact your administrator."

// ResolutionDenial is the response for a session whose resolution failed.
func ResolutionDenial(err error) Denial {
	switch {
	case errors.Is(err, ErrMultipleMemberships):
		return Denial{Status: http.StatusConflict, Code: "multiple_memberships", Message: ErrMultipleMemberships.Error()}
	case errors.Is(err, ErrOrganizationMissing):
		return Denial{Status: http.StatusNotFound, Code: "organization_not_found", Message: OrganizationUnverifiedMessage}
	}
	return Denial{Status: http.StatusInternalServerError, Code: "session_resolution_failed", Message: "could not resolve session"}
}
