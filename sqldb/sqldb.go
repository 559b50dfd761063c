// Package sqldb implements the core store interfaces on database/sql.
// It is written against SQLite but sticks to portable SQL.
package sqldb

import (
	"database/sql"
)

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(err)
	}
	return stmt
}
