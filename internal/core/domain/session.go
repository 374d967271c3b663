package domain

// Session is the authenticated identity of the current user. It exists
// only after a successful login, registration, or restore, and never holds
// the password.
type Session struct {
	UserID      string
	DisplayName string
	Token       string
}
