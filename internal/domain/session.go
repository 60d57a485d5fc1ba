package domain

// SessionStatus is the signed-in state of the application.
type SessionStatus string

const (
	// SessionLoading is the initial state while a persisted session is restored.
	SessionLoading SessionStatus = "loading"
	// SessionSignedOut means no user is using the app.
	SessionSignedOut SessionStatus = "signedOut"
	// SessionSignedIn means a complete profile is loaded.
	SessionSignedIn SessionStatus = "signedIn"
)

// CanTransition reports whether the session may move from s to next.
// signedIn -> signedIn is the profile-update self-loop.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionLoading:
		return next == SessionSignedOut || next == SessionSignedIn
	case SessionSignedOut:
		return next == SessionSignedIn
	case SessionSignedIn:
		return next == SessionSignedOut || next == SessionSignedIn
	default:
		return false
	}
}
