package sqldb

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/ryan-gr/50001-1D-Backend/core"
)

// selectColumns fixes the scan order. Never built from client input.
const selectColumns = `id, uploader_id, title, status, serialized_image_data,
	description, link, category, locations, contact_name, contact_email,
	contact_number, date_submitted, date_approved, date_posted, date_expiry`

type PosterDB struct {
	*sql.DB
	insert      *sql.Stmt
	get         *sql.Stmt
	getByTitle  *sql.Stmt
	setStatus   *sql.Stmt
	delete      *sql.Stmt
	deleteOwned *sql.Stmt
}

func NewPosterDB(db *sql.DB) *PosterDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS poster (
			id INTEGER PRIMARY KEY,
			uploader_id INTEGER,
			title varchar(256) NOT NULL,
			status varchar(16) NOT NULL DEFAULT 'pending',
			serialized_image_data TEXT,
			description TEXT,
			link TEXT,
			category TEXT,
			locations TEXT,
			contact_name TEXT,
			contact_email TEXT,
			contact_number TEXT,
			date_submitted TEXT,
			date_approved TEXT,
			date_posted TEXT,
			date_expiry TEXT,
			UNIQUE(title)
		);`)

	var posterDB = &PosterDB{}
	posterDB.DB = db
	posterDB.insert = mustPrepare(db, "INSERT INTO poster (title, status, uploader_id) VALUES (?, ?, ?)")
	posterDB.get = mustPrepare(db, "SELECT "+selectColumns+" FROM poster WHERE id = ? LIMIT 1")
	posterDB.getByTitle = mustPrepare(db, "SELECT "+selectColumns+" FROM poster WHERE title = ? LIMIT 1")
	posterDB.setStatus = mustPrepare(db, "UPDATE poster SET status = ? WHERE id = ?")
	posterDB.delete = mustPrepare(db, "DELETE FROM poster WHERE id = ?")
	posterDB.deleteOwned = mustPrepare(db, "DELETE FROM poster WHERE uploader_id = ? AND id = ?")
	return posterDB
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPoster(s scanner) (*core.Poster, error) {

	var p = &core.Poster{}
	var uploader sql.NullInt64
	var nullable [12]sql.NullString

	err := s.Scan(&p.ID, &uploader, &p.Title, &p.Status,
		&nullable[0], &nullable[1], &nullable[2], &nullable[3],
		&nullable[4], &nullable[5], &nullable[6], &nullable[7],
		&nullable[8], &nullable[9], &nullable[10], &nullable[11])
	if err != nil {
		return nil, err
	}

	p.UploaderID = int(uploader.Int64)
	p.Image = nullable[0].String
	p.Description = nullable[1].String
	p.Link = nullable[2].String
	p.Category = nullable[3].String
	p.Locations = nullable[4].String
	p.ContactName = nullable[5].String
	p.ContactEmail = nullable[6].String
	p.ContactNumber = nullable[7].String
	p.DateSubmitted = nullable[8].String
	p.DateApproved = nullable[9].String
	p.DatePosted = nullable[10].String
	p.DateExpiry = nullable[11].String
	return p, nil
}

func (db *PosterDB) InsertPoster(title string, uploaderID int) error {
	_, err := db.insert.Exec(title, string(core.StatusPending), uploaderID)
	return err
}

func (db *PosterDB) GetPoster(id int) (*core.Poster, error) {
	p, err := scanPoster(db.get.QueryRow(id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (db *PosterDB) GetPosterByTitle(title string) (*core.Poster, error) {
	p, err := scanPoster(db.getByTitle.QueryRow(title))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// buildWhere turns a filter into a WHERE clause with bound parameters.
// Column names are checked against the core allow-list, values are always
// passed as arguments, never interpolated.
func buildWhere(f *core.Filter) (string, []interface{}, error) {

	if f == nil {
		return "", nil, nil
	}

	var clauses []string
	var args []interface{}

	if f.PostedOnly {
		if f.OwnedBy != 0 {
			clauses = append(clauses, "(status = ? OR uploader_id = ?)")
			args = append(args, string(core.StatusPosted), f.OwnedBy)
		} else {
			clauses = append(clauses, "status = ?")
			args = append(args, string(core.StatusPosted))
		}
	}

	for _, cond := range f.Where {
		if !core.PosterColumn(cond.Column) {
			return "", nil, core.ErrInvalidColumn
		}
		switch len(cond.Values) {
		case 0:
			continue
		case 1:
			clauses = append(clauses, cond.Column+" = ?")
			args = append(args, cond.Values[0])
		default:
			clauses = append(clauses, cond.Column+" IN (?"+strings.Repeat(", ?", len(cond.Values)-1)+")")
			for _, v := range cond.Values {
				args = append(args, v)
			}
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (db *PosterDB) GetPosters(f *core.Filter) ([]*core.Poster, error) {

	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT "+selectColumns+" FROM poster"+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posters []*core.Poster
	for rows.Next() {
		p, err := scanPoster(rows)
		if err != nil {
			return nil, err
		}
		posters = append(posters, p)
	}
	return posters, rows.Err()
}

// update assembles "UPDATE poster SET ..." from an allow-listed field map.
// Keys are sorted so the statement is deterministic. Empty values become NULL.
func (db *PosterDB) update(fields map[string]string, where string, arg interface{}) error {

	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		if !core.SettableColumn(key) {
			return core.ErrInvalidColumn
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sets = make([]string, 0, len(keys))
	var args = make([]interface{}, 0, len(keys)+1)
	for _, key := range keys {
		sets = append(sets, key+" = ?")
		if value := fields[key]; value == "" {
			args = append(args, nil)
		} else {
			args = append(args, value)
		}
	}
	args = append(args, arg)

	_, err := db.Exec("UPDATE poster SET "+strings.Join(sets, ", ")+" WHERE "+where, args...)
	return err
}

func (db *PosterDB) UpdatePoster(id int, fields map[string]string) error {
	return db.update(fields, "id = ?", id)
}

func (db *PosterDB) UpdatePosterByTitle(title string, fields map[string]string) error {
	return db.update(fields, "title = ?", title)
}

func (db *PosterDB) SetPosterStatus(id int, status core.Status) error {
	_, err := db.setStatus.Exec(string(status), id)
	return err
}

func (db *PosterDB) DeletePoster(id int) error {
	_, err := db.delete.Exec(id)
	return err
}

func (db *PosterDB) DeletePosterOwned(uploaderID, id int) error {
	_, err := db.deleteOwned.Exec(uploaderID, id)
	return err
}
