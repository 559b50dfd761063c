package core

// A Row is the sparse wire form of a poster: keys whose value would be
// NULL or the literal string "None" are absent rather than null.
type Row map[string]interface{}

// Redact projects a poster into a Row for a caller with the given privilege.
// Anonymous callers never see any of the four date fields. ignoreImage drops
// the (potentially large) image payload on request. forceUploader includes
// the uploader id, which regular listings omit.
func (p *Poster) Redact(privilege Privilege, ignoreImage, forceUploader bool) Row {

	row := Row{
		"id":                    p.ID,
		"title":                 p.Title,
		"status":                string(p.Status),
		"serialized_image_data": p.Image,
		"description":           p.Description,
		"link":                  p.Link,
		"category":              p.Category,
		"locations":             p.Locations,
		"contact_name":          p.ContactName,
		"contact_email":         p.ContactEmail,
		"contact_number":        p.ContactNumber,
		"date_submitted":        p.DateSubmitted,
		"date_approved":         p.DateApproved,
		"date_posted":           p.DatePosted,
		"date_expiry":           p.DateExpiry,
	}
	if forceUploader {
		row["uploader_id"] = p.UploaderID
	}

	if privilege == Anonymous {
		delete(row, "date_submitted")
		delete(row, "date_approved")
		delete(row, "date_posted")
		delete(row, "date_expiry")
	}
	if ignoreImage {
		delete(row, "serialized_image_data")
	}

	for key, value := range row {
		if s, ok := value.(string); ok && (s == "" || s == "None") {
			delete(row, key)
		}
	}

	return row
}

// RedactAll maps Redact over a listing, yielding an empty (not nil) slice
// so an empty result marshals as [] rather than null.
func RedactAll(posters []*Poster, privilege Privilege, ignoreImage, forceUploader bool) []Row {
	rows := make([]Row, 0, len(posters))
	for _, p := range posters {
		rows = append(rows, p.Redact(privilege, ignoreImage, forceUploader))
	}
	return rows
}
