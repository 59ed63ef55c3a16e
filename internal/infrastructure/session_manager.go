package infrastructure

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionUserIDKey = "userId"
	sessionEmailKey  = "email"
)

// SessionManager ties the login session to a single named cookie.
type SessionManager struct {
	store sessions.Store
	name  string
}

func NewSessionManager(store sessions.Store, cookieName string) *SessionManager {
	return &SessionManager{store: store, name: cookieName}
}

// Establish records the authenticated user in the request's session. A stale
// or undecodable cookie is replaced by a fresh session.
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, userID, email string) error {
	session, err := m.store.Get(r, m.name)
	if session == nil {
		return err
	}

	session.Values[sessionUserIDKey] = userID
	session.Values[sessionEmailKey] = email
	return session.Save(r, w)
}

// Destroy removes the server-side record and expires the cookie. A request
// without a session still succeeds.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, m.name)
	if session == nil {
		return err
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID returns the user recorded by Establish, if any.
func (m *SessionManager) UserID(r *http.Request) (string, bool) {
	session, err := m.store.Get(r, m.name)
	if err != nil || session == nil {
		return "", false
	}
	userID, ok := session.Values[sessionUserIDKey].(string)
	return userID, ok && userID != ""
}
