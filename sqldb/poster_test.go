package sqldb

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ryan-gr/50001-1D-Backend/core"
	"github.com/ryan-gr/50001-1D-Backend/util"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1) // one :memory: database, not one per connection
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestPosterInsertAndUpdate(t *testing.T) {

	posters := NewPosterDB(testDB(t))

	if err := posters.InsertPoster("Sale", 3); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := posters.UpdatePosterByTitle("Sale", map[string]string{
		"description": "half price",
		"date_expiry": "2030-01-01 00:00:00",
		"link":        "", // empty means NULL
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	p, err := posters.GetPosterByTitle("Sale")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p == nil {
		t.Fatal("poster not found")
	}
	if p.Status != core.StatusPending {
		t.Errorf("status = %s, want pending", p.Status)
	}
	if p.UploaderID != 3 {
		t.Errorf("uploader = %d", p.UploaderID)
	}
	if p.Description != "half price" || p.DateExpiry != "2030-01-01 00:00:00" {
		t.Errorf("fields not applied: %+v", p)
	}
	if p.Link != "" {
		t.Errorf("link = %q, want NULL", p.Link)
	}

	if err := posters.UpdatePoster(p.ID, map[string]string{"status": "approved"}); err != nil {
		t.Fatalf("update by id: %v", err)
	}
	p, _ = posters.GetPoster(p.ID)
	if p.Status != core.StatusApproved {
		t.Errorf("status = %s, want approved", p.Status)
	}
}

func TestPosterTitleUnique(t *testing.T) {

	posters := NewPosterDB(testDB(t))

	if err := posters.InsertPoster("Sale", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := posters.InsertPoster("Sale", 2); err == nil {
		t.Fatal("duplicate title accepted")
	}
}

func TestPosterUpdateRejectsUnknownColumn(t *testing.T) {

	posters := NewPosterDB(testDB(t))

	if err := posters.InsertPoster("Sale", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}

	err := posters.UpdatePosterByTitle("Sale", map[string]string{"password": "x"})
	if !errors.Is(err, core.ErrInvalidColumn) {
		t.Fatalf("err = %v, want ErrInvalidColumn", err)
	}
	err = posters.UpdatePoster(1, map[string]string{"id": "9"})
	if !errors.Is(err, core.ErrInvalidColumn) {
		t.Fatalf("err = %v, want ErrInvalidColumn", err)
	}
}

func TestPosterFilter(t *testing.T) {

	posters := NewPosterDB(testDB(t))

	seed := []struct {
		title    string
		uploader int
		status   core.Status
	}{
		{"a", 1, core.StatusPosted},
		{"b", 1, core.StatusPending},
		{"c", 2, core.StatusPosted},
		{"d", 2, core.StatusRejected},
	}
	for _, s := range seed {
		if err := posters.InsertPoster(s.title, s.uploader); err != nil {
			t.Fatalf("insert %s: %v", s.title, err)
		}
		if err := posters.UpdatePosterByTitle(s.title, map[string]string{"status": string(s.status)}); err != nil {
			t.Fatalf("update %s: %v", s.title, err)
		}
	}

	all, err := posters.GetPosters(nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len(all) = %d", len(all))
	}

	postedOnly, err := posters.GetPosters(&core.Filter{PostedOnly: true})
	if err != nil {
		t.Fatalf("posted only: %v", err)
	}
	if len(postedOnly) != 2 {
		t.Errorf("posted only: %d rows", len(postedOnly))
	}

	// posted or owned by user 1
	visible, err := posters.GetPosters(&core.Filter{PostedOnly: true, OwnedBy: 1})
	if err != nil {
		t.Fatalf("posted or owned: %v", err)
	}
	if len(visible) != 3 {
		t.Errorf("posted or owned by 1: %d rows", len(visible))
	}

	// IN list
	some, err := posters.GetPosters(&core.Filter{
		Where: []core.Condition{{Column: "status", Values: []string{"posted", "rejected"}}},
	})
	if err != nil {
		t.Fatalf("IN filter: %v", err)
	}
	if len(some) != 3 {
		t.Errorf("IN filter: %d rows", len(some))
	}

	// AND-combined
	mine, err := posters.GetPosters(&core.Filter{
		Where: []core.Condition{
			{Column: "uploader_id", Values: []string{"2"}},
			{Column: "status", Values: []string{"posted"}},
		},
	})
	if err != nil {
		t.Fatalf("AND filter: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "c" {
		t.Errorf("AND filter: %+v", mine)
	}

	if _, err := posters.GetPosters(&core.Filter{
		Where: []core.Condition{{Column: "1=1; --", Values: []string{"x"}}},
	}); !errors.Is(err, core.ErrInvalidColumn) {
		t.Errorf("unknown column: err = %v", err)
	}
}

func TestPosterDelete(t *testing.T) {

	posters := NewPosterDB(testDB(t))

	if err := posters.InsertPoster("Sale", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	p, _ := posters.GetPosterByTitle("Sale")

	// wrong owner is a no-op
	if err := posters.DeletePosterOwned(2, p.ID); err != nil {
		t.Fatalf("delete owned: %v", err)
	}
	if p, _ := posters.GetPoster(p.ID); p == nil {
		t.Fatal("poster deleted by non-owner")
	}

	if err := posters.DeletePosterOwned(1, p.ID); err != nil {
		t.Fatalf("delete owned: %v", err)
	}
	if p, _ := posters.GetPoster(p.ID); p != nil {
		t.Fatal("poster still there")
	}
}

func TestMaintenancePasses(t *testing.T) {

	db := &core.DB{PosterDB: NewPosterDB(testDB(t))}
	now := time.Now()

	if err := db.InsertPoster("due", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.UpdatePosterByTitle("due", map[string]string{
		"status":      "approved",
		"date_posted": util.FormatDateTime(now.Add(-time.Second)),
		"date_expiry": util.FormatDateTime(now.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.InsertPoster("later", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.UpdatePosterByTitle("later", map[string]string{
		"status":      "approved",
		"date_posted": util.FormatDateTime(now.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := db.ApproveDue(now); err != nil {
		t.Fatalf("approve: %v", err)
	}
	p, _ := db.GetPosterByTitle("due")
	if p.Status != core.StatusPosted {
		t.Errorf("due: status = %s, want posted", p.Status)
	}
	p, _ = db.GetPosterByTitle("later")
	if p.Status != core.StatusApproved {
		t.Errorf("later: status = %s, want approved", p.Status)
	}

	// idempotent: a second pass changes nothing
	if err := db.ApproveDue(now); err != nil {
		t.Fatalf("approve again: %v", err)
	}
	p, _ = db.GetPosterByTitle("due")
	if p.Status != core.StatusPosted {
		t.Errorf("after second pass: status = %s", p.Status)
	}

	// expiry only fires on posted rows whose date has passed
	if err := db.UpdatePosterByTitle("due", map[string]string{
		"date_expiry": util.FormatDateTime(now.Add(-time.Second)),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := db.ExpireDue(now); err != nil {
		t.Fatalf("expire: %v", err)
	}
	p, _ = db.GetPosterByTitle("due")
	if p.Status != core.StatusExpired {
		t.Errorf("status = %s, want expired", p.Status)
	}
}
