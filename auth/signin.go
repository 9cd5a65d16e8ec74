package auth

// Sign-in failure codes reported by the browser after the provider's popup
// flow fails.
const (
	CodePopupClosed     = "auth/popup-closed-by-user"
	CodePopupBlocked    = "auth/popup-blocked"
	CodeCancelledPopup  = "auth/cancelled-popup-request"
	CodeTooManyRequests = "auth/too-many-requests"
)

var signInMessages = map[string]string{
	CodePopupClosed:     "Sign-in was cancelled because the popup was closed. Please try again.",
	CodePopupBlocked:    "Your browser blocked the sign-in popup. Allow popups for this site and try again.",
	CodeCancelledPopup:  "Another sign-in is already in progress. Finish it or close it first.",
	CodeTooManyRequests: "Too many sign-in attempts. Please wait a few minutes and try again.",
}

// SignInFailedMessage is shown for failure codes without a specific message.
const SignInFailedMessage = "Sign-in failed. Please try again."

// DomainMessage is shown when someone signs in with an account outside the
// institution's domain.
const DomainMessage = "Please sign in with your university email address."

// SignInMessage returns the user-facing message for a sign-in failure code.
func SignInMessage(code string) string {
	if msg, ok := signInMessages[code]; ok {
		return msg
	}
	return SignInFailedMessage
}
