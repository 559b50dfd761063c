package core

import "testing"

func TestParsePrivilege(t *testing.T) {
	if p, ok := ParsePrivilege("user"); !ok || p != Standard {
		t.Errorf(`ParsePrivilege("user") = %v, %v`, p, ok)
	}
	if p, ok := ParsePrivilege("administrator"); !ok || p != Administrator {
		t.Errorf(`ParsePrivilege("administrator") = %v, %v`, p, ok)
	}
	for _, name := range []string{"", "admin", "Administrator", "root"} {
		if _, ok := ParsePrivilege(name); ok {
			t.Errorf("ParsePrivilege(%q) accepted", name)
		}
	}
}

func TestPosterColumns(t *testing.T) {
	for _, name := range []string{"id", "title", "status", "date_expiry", "contact_email"} {
		if !PosterColumn(name) {
			t.Errorf("PosterColumn(%q) = false", name)
		}
	}
	for _, name := range []string{"", "password", "title; DROP TABLE poster", "poster.title"} {
		if PosterColumn(name) {
			t.Errorf("PosterColumn(%q) = true", name)
		}
	}
	if SettableColumn("id") {
		t.Error("id must not be settable")
	}
	if !SettableColumn("uploader_id") {
		t.Error("uploader_id must be settable")
	}
}

func TestDateColumn(t *testing.T) {
	if !DateColumn("date_posted") {
		t.Error("date_posted not recognized")
	}
	if DateColumn("contact_name") {
		t.Error("contact_name misrecognized")
	}
}

func TestCancellable(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusPending:  true,
		StatusApproved: true,
		StatusRejected: true,
		StatusExpired:  true,
		StatusPosted:   false,
	} {
		if status.Cancellable() != want {
			t.Errorf("%s.Cancellable() = %v", status, !want)
		}
	}
}

func TestCountStatuses(t *testing.T) {
	counts := CountStatuses([]*Poster{
		{Status: StatusPosted},
		{Status: StatusPosted},
		{Status: StatusPending},
	})
	if counts[StatusPosted] != 2 || counts[StatusPending] != 1 {
		t.Errorf("counts = %v", counts)
	}
	// zero statuses are reported, not omitted
	if n, ok := counts[StatusRejected]; !ok || n != 0 {
		t.Errorf("rejected count = %v, %v", n, ok)
	}
}
