package api

import (
	"errors"
	"net/http"

	"github.com/ryan-gr/50001-1D-Backend/core"
)

var (
	errUsernameRequired  = errors.New("Username is required.")
	errPasswordRequired  = errors.New("Password is required.")
	errPrivilegeRequired = errors.New("Privilege is required.")
	errInvalidPrivilege  = errors.New("Invalid privilege.")
	errInvalidRequested  = errors.New("Invalid privilege requested.")
	errUsernameExists    = errors.New("Username already exists.")
)

func register(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	var in struct {
		Username  *string `json:"username"`
		Password  *string `json:"password"`
		Privilege *string `json:"privilege"`
	}
	if err := readJSON(&in, req); err != nil {
		return err
	}

	if in.Username == nil || *in.Username == "" {
		return errUsernameRequired
	}
	if in.Password == nil || *in.Password == "" {
		return errPasswordRequired
	}
	if in.Privilege == nil || *in.Privilege == "" {
		return errPrivilegeRequired
	}

	privilege, ok := core.ParsePrivilege(*in.Privilege)
	if !ok {
		return errInvalidPrivilege
	}

	existing, err := ctx.DB().GetUserByName(*in.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return errUsernameExists
	}

	if _, err := ctx.DB().InsertUser(*in.Username, *in.Password, privilege); err != nil {
		return err
	}
	return sendSuccess(w)
}

func login(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	var in struct {
		Username           *string `json:"username"`
		Password           *string `json:"password"`
		RequestedPrivilege *string `json:"requested_privilege"`
	}
	if err := readJSON(&in, req); err != nil {
		return err
	}

	if in.Username == nil || *in.Username == "" {
		return errUsernameRequired
	}
	if in.Password == nil || *in.Password == "" {
		return errPasswordRequired
	}
	if in.RequestedPrivilege == nil {
		return errPrivilegeRequired
	}

	requested, ok := core.ParsePrivilege(*in.RequestedPrivilege)
	if !ok {
		return errInvalidRequested
	}

	u, err := ctx.Login(*in.Username, *in.Password, requested)
	if err != nil {
		return err // ErrAuth or ErrElevation
	}

	// the stored privilege, not the requested one
	return writeJSON(w, struct {
		Status    string         `json:"status"`
		Privilege core.Privilege `json:"privilege"`
	}{"success", u.Privilege})
}

func logout(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {
	ctx.Logout()
	return sendSuccess(w)
}

// current is a raw view of the session, no validation. The misspelled
// privelage key predates this implementation and is kept for wire
// compatibility.
func current(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {
	return writeJSON(w, map[string]interface{}{
		"user_id":   ctx.SessionValue("user_id"),
		"privelage": ctx.SessionValue("privelage"),
	})
}
