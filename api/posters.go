package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ryan-gr/50001-1D-Backend/core"
	"github.com/ryan-gr/50001-1D-Backend/util"
)

var (
	errIDNotProvided   = errors.New("id not provided.")
	errNoPosterGivenID = errors.New("No poster the given id.")
	errNotOwner        = errors.New("Cannot delete poster not uploaded by the current user.")
	errNotCancellable  = errors.New("Poster not pending / approved.")
	errMissingTitle    = errors.New("Missing title. New posters must have a title.")
	errTitleExists     = errors.New("Poster already exists with given title.")
	errInvalidDate     = errors.New("Invalid date format")
	errMissingID       = errors.New("Missing Id in request.")
	errIDNotFound      = errors.New("Requested id not found.")
	errNonAdminStatus  = errors.New("Non-admin cannot request for a status.")
	errNoStatusMatch   = errors.New("No posters matching the requested status.")
	errIDNotSpecified  = errors.New("Id not specified.")
	errIDUnknown       = errors.New("Id not found.")
	errDatabase        = errors.New("Error in updating the database.")
)

func ignoreImage(req *http.Request) bool {
	return req.URL.Query().Get("ignore_image") == "1"
}

// maintain runs the lazy lifecycle passes. Called before any read that can
// return posted items.
func maintain(ctx *core.Request) error {
	now := time.Now()
	if err := ctx.DB().ApproveDue(now); err != nil {
		return err
	}
	return ctx.DB().ExpireDue(now)
}

// posterStatus summarizes the whole table per status. Admin only.
func posterStatus(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	if _, _, err := ctx.Identify(adminOnly, false); err != nil {
		return err
	}

	posters, err := ctx.DB().GetPosters(nil)
	if err != nil {
		return err
	}
	return writeJSON(w, core.CountStatuses(posters))
}

// myPosterStatus summarizes only the caller's posters.
func myPosterStatus(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	uid, _, err := ctx.Identify(anyAuthenticated, false)
	if err != nil {
		return err
	}

	posters, err := ctx.DB().GetPosters(&core.Filter{
		Where: []core.Condition{{Column: "uploader_id", Values: []string{strconv.Itoa(uid)}}},
	})
	if err != nil {
		return err
	}
	return writeJSON(w, core.CountStatuses(posters))
}

// minePosters lists the caller's posters, optionally restricted to one status.
// Owners always see their own dates, so redaction runs unrestricted here.
func minePosters(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	uid, _, err := ctx.Identify(anyAuthenticated, false)
	if err != nil {
		return err
	}

	var f = &core.Filter{
		Where: []core.Condition{{Column: "uploader_id", Values: []string{strconv.Itoa(uid)}}},
	}
	if status := req.URL.Query().Get("status"); status != "" {
		f.Where = append(f.Where, core.Condition{Column: "status", Values: []string{status}})
	}

	posters, err := ctx.DB().GetPosters(f)
	if err != nil {
		return err
	}
	return writeJSON(w, core.RedactAll(posters, core.Administrator, ignoreImage(req), false))
}

// cancelPoster deletes one of the caller's own posters, as long as it has not
// gone public. The checks run separately so each failure keeps its message.
func cancelPoster(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	uid, _, err := ctx.Identify(anyAuthenticated, false)
	if err != nil {
		return err
	}

	var in struct {
		ID *int `json:"id"`
	}
	if err := readJSON(&in, req); err != nil {
		return err
	}
	if in.ID == nil {
		return errIDNotProvided
	}

	p, err := ctx.DB().GetPoster(*in.ID)
	if err != nil {
		return err
	}
	if p == nil {
		return errNoPosterGivenID
	}
	if p.UploaderID != uid {
		return errNotOwner
	}
	if !p.Status.Cancellable() {
		return errNotCancellable
	}

	if err := ctx.DB().DeletePosterOwned(uid, *in.ID); err != nil {
		return err
	}
	return sendSuccess(w)
}

// postersFilter answers a dynamic AND-combined query built from the request
// parameters. Values may hold comma-separated alternatives (IN lists).
// Non-admins only see posted posters plus their own; anonymous callers only
// posted ones.
func postersFilter(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	if err := maintain(ctx); err != nil {
		return err
	}

	uid, privilege, err := ctx.Identify(anyone, true)
	if err != nil {
		return err
	}

	var f = &core.Filter{}
	switch privilege {
	case core.Standard:
		f.PostedOnly = true
		f.OwnedBy = uid
	case core.Anonymous:
		f.PostedOnly = true
	}

	query := req.URL.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		if key == "ignore_image" || key == "mine" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f.Where = append(f.Where, core.Condition{
			Column: key,
			Values: strings.Split(query.Get(key), ","),
		})
	}
	if query.Get("mine") == "1" {
		f.Where = append(f.Where, core.Condition{Column: "uploader_id", Values: []string{strconv.Itoa(uid)}})
	}

	posters, err := ctx.DB().GetPosters(f) // unknown columns fail here, before any SQL runs
	if err != nil {
		return err
	}
	return writeJSON(w, core.RedactAll(posters, privilege, ignoreImage(req), false))
}

// postersGet looks a poster up by id, lists by status (admin only), or lists
// everything. Non-admins only ever see posted posters here.
func postersGet(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	if err := maintain(ctx); err != nil {
		return err
	}

	_, privilege, err := ctx.Identify(anyone, true)
	if err != nil {
		return err
	}

	query := req.URL.Query()

	if id := query.Get("id"); id != "" {
		var f = &core.Filter{
			PostedOnly: privilege < core.Administrator,
			Where:      []core.Condition{{Column: "id", Values: []string{id}}},
		}
		posters, err := ctx.DB().GetPosters(f)
		if err != nil {
			return err
		}
		if len(posters) == 0 {
			return errIDNotFound
		}
		return writeJSON(w, core.RedactAll(posters, privilege, ignoreImage(req), false))
	}

	if status := query.Get("status"); status != "" {
		if privilege < core.Administrator {
			return errNonAdminStatus
		}
		posters, err := ctx.DB().GetPosters(&core.Filter{
			Where: []core.Condition{{Column: "status", Values: []string{status}}},
		})
		if err != nil {
			return err
		}
		if len(posters) == 0 {
			return errNoStatusMatch
		}
		return writeJSON(w, core.RedactAll(posters, privilege, ignoreImage(req), false))
	}

	posters, err := ctx.DB().GetPosters(&core.Filter{
		PostedOnly: privilege < core.Administrator,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, core.RedactAll(posters, privilege, ignoreImage(req), false))
}

// postersPost creates a poster (no id in the body) or updates one (id given).
func postersPost(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	uid, _, err := ctx.Identify(anyAuthenticated, false)
	if err != nil {
		return err
	}

	var body map[string]interface{}
	if err := readJSON(&body, req); err != nil {
		return err
	}

	if _, ok := body["id"]; !ok {
		return createPoster(w, ctx, uid, body)
	}
	return updatePoster(w, ctx, body)
}

func createPoster(w http.ResponseWriter, ctx *core.Request, uid int, body map[string]interface{}) error {

	title, _ := body["title"].(string)
	if title == "" {
		return errMissingTitle
	}
	delete(body, "title")

	existing, err := ctx.DB().GetPosterByTitle(title)
	if err != nil {
		return err
	}
	if existing != nil {
		return errTitleExists
	}

	fields, err := posterFields(body, true)
	if err != nil {
		return err
	}
	// the session user owns the new poster, whatever the body says
	fields["uploader_id"] = strconv.Itoa(uid)

	if err := ctx.DB().InsertPoster(title, uid); err != nil {
		return err
	}
	if err := ctx.DB().UpdatePosterByTitle(title, fields); err != nil {
		if errors.Is(err, core.ErrInvalidColumn) {
			return err
		}
		return errDatabase
	}
	return sendSuccess(w)
}

func updatePoster(w http.ResponseWriter, ctx *core.Request, body map[string]interface{}) error {

	idValue := jsonString(body["id"])
	if idValue == "" {
		return errMissingID
	}
	delete(body, "id")

	id, err := strconv.Atoi(idValue)
	if err != nil {
		return errIDNotFound
	}
	p, err := ctx.DB().GetPoster(id)
	if err != nil {
		return err
	}
	if p == nil {
		return errIDNotFound
	}

	fields, err := posterFields(body, false)
	if err != nil {
		return err
	}

	if err := ctx.DB().UpdatePoster(id, fields); err != nil {
		if errors.Is(err, core.ErrInvalidColumn) {
			return err
		}
		return errDatabase
	}
	return sendSuccess(w)
}

// postersDelete removes a poster by id, unconditionally. Admin only.
func postersDelete(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	if _, _, err := ctx.Identify(adminOnly, false); err != nil {
		return err
	}

	idValue := req.URL.Query().Get("id")
	if idValue == "" {
		return errIDNotSpecified
	}
	id, err := strconv.Atoi(idValue)
	if err != nil {
		return errIDUnknown
	}

	p, err := ctx.DB().GetPoster(id)
	if err != nil {
		return err
	}
	if p == nil {
		return errIDUnknown
	}

	if err := ctx.DB().DeletePoster(id); err != nil {
		return err
	}
	return sendSuccess(w)
}

// debugAll dumps the whole table, uploader and image included, with no
// authentication. Diagnostic only.
func debugAll(w http.ResponseWriter, req *http.Request, ctx *core.Request) error {

	posters, err := ctx.DB().GetPosters(nil)
	if err != nil {
		return err
	}
	if len(posters) == 0 {
		w.Write([]byte("No posters."))
		return nil
	}
	return writeJSON(w, core.RedactAll(posters, core.Administrator, ignoreImage(req), true))
}

// posterFields converts a decoded JSON body into the allow-listed column map,
// validating date fields on the way. The create path answers a bad date with
// the generic message, the edit path names the field.
func posterFields(body map[string]interface{}, create bool) (map[string]string, error) {

	fields := make(map[string]string, len(body))
	for key, raw := range body {
		if !core.SettableColumn(key) {
			return nil, core.ErrInvalidColumn
		}
		value := jsonString(raw)
		if core.DateColumn(key) && value != "" {
			if _, err := util.ParseDateTime(value); err != nil {
				if create {
					return nil, errInvalidDate
				}
				return nil, fmt.Errorf("Invalid date format for %s", key)
			}
		}
		fields[key] = value
	}
	return fields, nil
}

func jsonString(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
