package sqldb

import (
	"database/sql"

	"github.com/ryan-gr/50001-1D-Backend/core"
	"golang.org/x/crypto/bcrypt"
)

type UserDB struct {
	*sql.DB
	get       *sql.Stmt
	getByName *sql.Stmt
	insert    *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS user (
			id INTEGER PRIMARY KEY,
			username varchar(128) NOT NULL,
			password varchar(128) NOT NULL,
			privilege INTEGER NOT NULL DEFAULT 0,
			UNIQUE(username)
		);`)

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.get = mustPrepare(db, "SELECT id, username, password, privilege FROM user WHERE id = ? LIMIT 1")
	userDB.getByName = mustPrepare(db, "SELECT id, username, password, privilege FROM user WHERE username = ? LIMIT 1")
	userDB.insert = mustPrepare(db, "INSERT INTO user (username, password, privilege) VALUES (?, ?, ?)")
	return userDB
}

func scanUser(row *sql.Row) (*core.User, error) {
	var u = &core.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Privilege)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (db *UserDB) GetUser(id int) (*core.User, error) {
	return scanUser(db.get.QueryRow(id))
}

func (db *UserDB) GetUserByName(username string) (*core.User, error) {
	return scanUser(db.getByName.QueryRow(username))
}

func (db *UserDB) InsertUser(username, password string, privilege core.Privilege) (*core.User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	result, err := db.insert.Exec(username, string(hash), int(privilege))
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &core.User{
		ID:           int(id),
		Username:     username,
		PasswordHash: string(hash),
		Privilege:    privilege,
	}, nil
}

func (db *UserDB) LoginUser(username, password string) (*core.User, error) {

	u, err := db.GetUserByName(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, core.ErrAuth // user not found
	}
	if !u.Authenticate(password) {
		return nil, core.ErrAuth // wrong password
	}
	return u, nil
}
