package catalog

import "errors"

// Mode selects which logged-out form is active.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

var (
	// ErrInvalidCredentials is the single notice for a failed login. It
	// deliberately does not say whether the username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordMismatch rejects registration when the confirmation
	// does not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrAlreadyLoggedIn rejects logged-out operations on an
	// authenticated session.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrNotLoggedIn rejects logout on an unauthenticated session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// SessionController owns the authentication state and mediates the
// transitions between the login, registration and authenticated views.
// The initial state is logged out with the login form active.
type SessionController struct {
	creds   *CredentialStore
	catalog *ViewModel

	authenticated bool
	mode          Mode
}

// NewSessionController builds a controller over the credential store and
// the catalog view model it resets on logout.
func NewSessionController(creds *CredentialStore, catalog *ViewModel) *SessionController {
	return &SessionController{creds: creds, catalog: catalog}
}

// Authenticated reports whether the session is logged in.
func (sc *SessionController) Authenticated() bool { return sc.authenticated }

// Mode returns the active logged-out form.
func (sc *SessionController) Mode() Mode { return sc.mode }

// SubmitLogin authenticates against the credential store. On success the
// session becomes authenticated; a failed match yields
// ErrInvalidCredentials and the session stays on the login form.
func (sc *SessionController) SubmitLogin(username, password string) error {
	if sc.authenticated {
		return ErrAlreadyLoggedIn
	}
	ok, err := sc.creds.Authenticate(username, password)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	sc.authenticated = true
	return nil
}

// SubmitRegistration validates the confirmation and registers the
// credential. On success the logged-out form switches back to login.
func (sc *SessionController) SubmitRegistration(username, password, confirm string) error {
	if sc.authenticated {
		return ErrAlreadyLoggedIn
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if err := sc.creds.Register(username, password); err != nil {
		return err
	}
	sc.mode = ModeLogin
	return nil
}

// SwitchMode replaces the logged-out form. Any in-progress input of the
// other form is the caller's to discard.
func (sc *SessionController) SwitchMode(m Mode) error {
	if sc.authenticated {
		return ErrAlreadyLoggedIn
	}
	sc.mode = m
	return nil
}

// Logout drops back to the login form and discards the catalog's cached
// collection and list view.
func (sc *SessionController) Logout() error {
	if !sc.authenticated {
		return ErrNotLoggedIn
	}
	sc.authenticated = false
	sc.mode = ModeLogin
	sc.catalog.Reset()
	return nil
}
