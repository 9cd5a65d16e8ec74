package sparkbytes

// SessionRequest is sent by the browser once the identity provider's sign-in
// popup has finished.
type SessionRequest struct {
	IDToken string `json:"idToken,omitempty"`
	// Error is the provider's failure code when sign-in failed, eg
	// "auth/popup-blocked".
	Error string `json:"error,omitempty"`
}

// Session describes a signed in user and where the app should go next.
type Session struct {
	UserID UserID `json:"userId"`
	Email  string `json:"email"`
	// Profile is nil until the user finishes onboarding.
	Profile         *UserProfile `json:"profile,omitempty"`
	NeedsOnboarding bool         `json:"needsOnboarding"`
	Next            string       `json:"next"`
}

// Routes the app moves to after sign-in.
const (
	RouteSignup = "/signup"
	RouteHome   = "/home"
)
