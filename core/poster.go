package core

import (
	"errors"
	"strings"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPosted   Status = "posted"
	StatusExpired  Status = "expired"
	StatusRejected Status = "rejected"
)

// Statuses lists all lifecycle statuses in lifecycle order, rejected last.
var Statuses = []Status{StatusPending, StatusApproved, StatusPosted, StatusExpired, StatusRejected}

// cancellable are the statuses an owner may still cancel a poster in.
// A posted poster is public and can only be removed by an administrator.
var cancellable = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
	StatusExpired:  true,
}

func (s Status) Cancellable() bool {
	return cancellable[s]
}

// Poster is one listing row. The empty string means NULL for all text
// columns, dates included. Dates are stored as "2006-01-02 15:04:05" text.
type Poster struct {
	ID            int
	UploaderID    int
	Title         string
	Status        Status
	Image         string // serialized_image_data
	Description   string
	Link          string
	Category      string
	Locations     string
	ContactName   string
	ContactEmail  string
	ContactNumber string
	DateSubmitted string
	DateApproved  string
	DatePosted    string
	DateExpiry    string
}

// posterColumns is the allow-list of poster table columns. Client-supplied
// field names are checked against it before any query is assembled, so column
// names never come from the request.
var posterColumns = map[string]bool{
	"id":                    true,
	"uploader_id":           true,
	"title":                 true,
	"status":                true,
	"serialized_image_data": true,
	"description":           true,
	"link":                  true,
	"category":              true,
	"locations":             true,
	"contact_name":          true,
	"contact_email":         true,
	"contact_number":        true,
	"date_submitted":        true,
	"date_approved":         true,
	"date_posted":           true,
	"date_expiry":           true,
}

// PosterColumn reports whether name is a column of the poster table.
func PosterColumn(name string) bool {
	return posterColumns[name]
}

// SettableColumn reports whether clients may write the column. The id is
// assigned by the store and never writable.
func SettableColumn(name string) bool {
	return name != "id" && posterColumns[name]
}

// DateColumn reports whether a client field name carries a date value.
// The original wire format treats every "date"-prefixed key as one.
func DateColumn(name string) bool {
	return strings.HasPrefix(name, "date")
}

// ErrInvalidColumn is the answer to any client field name outside the allow-list.
var ErrInvalidColumn = errors.New("Invalid parameter.")

// A Condition restricts one column to one of the given values,
// "col = ?" or "col IN (?, ...)". Conditions are AND-combined.
type Condition struct {
	Column string
	Values []string
}

// Filter describes a poster listing query.
type Filter struct {
	// PostedOnly restricts the result to posted rows. OwnedBy additionally
	// lets rows owned by that user through, regardless of status.
	PostedOnly bool
	OwnedBy    int // 0 = nobody

	Where []Condition
}

type PosterDB interface {
	// InsertPoster creates a minimal pending row. Remaining fields arrive
	// through UpdatePosterByTitle, mirroring the two-step create.
	InsertPoster(title string, uploaderID int) error
	UpdatePoster(id int, fields map[string]string) error
	UpdatePosterByTitle(title string, fields map[string]string) error
	GetPoster(id int) (*Poster, error)              // nil if not found
	GetPosterByTitle(title string) (*Poster, error) // nil if not found
	GetPosters(f *Filter) ([]*Poster, error)
	SetPosterStatus(id int, status Status) error
	DeletePoster(id int) error
	DeletePosterOwned(uploaderID, id int) error
}

// CountStatuses tallies posters per lifecycle status. Every status is
// present in the result, zero or not.
func CountStatuses(posters []*Poster) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, p := range posters {
		counts[p.Status]++
	}
	return counts
}
