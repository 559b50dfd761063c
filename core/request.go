package core

import (
	"context"
	"errors"
	"net/http"
)

// session keys
const (
	sessionUserID    = "user_id"
	sessionPrivilege = "user_privilege"
)

var (
	ErrNotLoggedIn  = errors.New("Not logged in.")
	ErrUnauthorized = errors.New("Unauthorized.")
	ErrElevation    = errors.New("Unauthorized") // requesting more privilege than the account holds
)

// A Request is created by DB.NewRequest once per HTTP request.
type Request struct {
	db   *DB
	User *User // loaded from the session, nil if anonymous or not found

	request *http.Request
}

// NewRequest creates a Request for the given http.Request.
// If a user is logged in, it sets Request.User.
func (c *DB) NewRequest(httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		request: httpreq,
	}

	if uid := c.SessionManager.GetInt(httpreq.Context(), sessionUserID); uid != 0 {
		u, err := c.GetUser(uid)
		if u != nil && err == nil {
			req.User = u
		}
		// ignore errors
	}

	return req
}

func (req *Request) ctx() context.Context {
	return req.request.Context()
}

func (req *Request) DB() *DB {
	return req.db
}

// UserID returns the session user id, if any.
func (req *Request) UserID() (int, bool) {
	if !req.db.SessionManager.Exists(req.ctx(), sessionUserID) {
		return 0, false
	}
	return req.db.SessionManager.GetInt(req.ctx(), sessionUserID), true
}

// Privilege returns the session privilege, defaulting to Anonymous if unset.
func (req *Request) Privilege() Privilege {
	if !req.db.SessionManager.Exists(req.ctx(), sessionPrivilege) {
		return Anonymous
	}
	return Privilege(req.db.SessionManager.GetInt(req.ctx(), sessionPrivilege))
}

// SessionValue reads an arbitrary session key. Keys that were never stored
// yield nil. Used by the raw session view only.
func (req *Request) SessionValue(key string) interface{} {
	return req.db.SessionManager.Get(req.ctx(), key)
}

// Login authenticates the user and establishes a session holding the user id
// and the account's stored privilege. A caller may not request a privilege
// above the stored one; the session always receives the stored privilege,
// never the requested one.
func (req *Request) Login(username, password string, requested Privilege) (*User, error) {

	u, err := req.db.LoginUser(username, password)
	if err != nil {
		return nil, err // ErrAuth if username or password is wrong
	}

	if requested > u.Privilege {
		return nil, ErrElevation
	}

	// fresh token, old session state gone
	if err := req.db.SessionManager.RenewToken(req.ctx()); err != nil {
		return nil, err
	}
	req.db.SessionManager.Put(req.ctx(), sessionUserID, u.ID)
	req.db.SessionManager.Put(req.ctx(), sessionPrivilege, int(u.Privilege))

	req.User = u
	return u, nil
}

// Logout clears the session unconditionally. It always succeeds.
func (req *Request) Logout() {
	_ = req.db.SessionManager.Destroy(req.ctx())
	req.User = nil
}

// Identify resolves (user id, privilege) from the session and gates the
// request on the allowed privileges. With ignoreID the caller accepts
// anonymous sessions, so the missing user id is not an error.
func (req *Request) Identify(allowed []Privilege, ignoreID bool) (int, Privilege, error) {

	uid, hasID := req.UserID()
	privilege := req.Privilege()

	if !ignoreID && !hasID {
		return 0, Anonymous, ErrNotLoggedIn
	}

	for _, a := range allowed {
		if a == privilege {
			return uid, privilege, nil
		}
	}
	return 0, Anonymous, ErrUnauthorized
}
