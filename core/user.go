package core

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Privilege is an access tier. Sessions without a logged-in user are Anonymous.
type Privilege int

const (
	Anonymous     Privilege = -1
	Standard      Privilege = 0
	Administrator Privilege = 1
)

// ParsePrivilege maps the wire names to privilege values.
// Anything else, including the empty string, is rejected.
func ParsePrivilege(name string) (Privilege, bool) {
	switch name {
	case "user":
		return Standard, true
	case "administrator":
		return Administrator, true
	}
	return Anonymous, false
}

type User struct {
	ID           int
	Username     string
	PasswordHash string
	Privilege    Privilege
}

func (u *User) Authenticate(password string) bool {
	return bcrypt.CompareHashAndPassword(
		[]byte(u.PasswordHash),
		[]byte(password)) == nil
}

// ErrAuth deliberately does not reveal whether the username or the password was wrong.
var ErrAuth = errors.New("Invalid username or password.")

type UserDB interface {
	GetUser(id int) (*User, error)
	GetUserByName(username string) (*User, error)
	InsertUser(username, password string, privilege Privilege) (*User, error)
	LoginUser(username, password string) (*User, error) // returns ErrAuth for unknown user and for wrong password
}
