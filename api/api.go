// Package api exposes the HTTP/JSON surface. Success and failure alike are
// answered with HTTP 200 and a status field, which is what existing clients
// parse; only the envelope distinguishes the two.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/ryan-gr/50001-1D-Backend/core"
)

var errMalformed = errors.New("malformed JSON payload")

// privilege whitelists handed to Request.Identify
var (
	adminOnly        = []core.Privilege{core.Administrator}
	anyAuthenticated = []core.Privilege{core.Standard, core.Administrator}
	anyone           = []core.Privilege{core.Anonymous, core.Standard, core.Administrator}
)

type handle func(w http.ResponseWriter, req *http.Request, ctx *core.Request) error

func middleware(db *core.DB, f handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		var ctx = db.NewRequest(req)
		if err := f(w, req, ctx); err != nil {
			sendError(w, err)
		}
	}
}

func NewRouter(db *core.DB) http.Handler {

	var router = httprouter.New()

	router.GET("/current", middleware(db, current))

	router.POST("/auth/register", middleware(db, register))
	router.POST("/auth/login", middleware(db, login))
	router.GET("/auth/logout", middleware(db, logout))

	router.GET("/posters/", middleware(db, postersGet))
	router.POST("/posters/", middleware(db, postersPost))
	router.DELETE("/posters/", middleware(db, postersDelete))
	router.GET("/posters/filter", middleware(db, postersFilter))
	router.GET("/posters/mine", middleware(db, minePosters))
	router.GET("/posters/status", middleware(db, posterStatus))
	router.GET("/posters/my_status", middleware(db, myPosterStatus))
	router.POST("/posters/cancel", middleware(db, cancelPoster))
	router.GET("/posters/debug_all", middleware(db, debugAll))

	return router
}

func readJSON(dst interface{}, req *http.Request) error {
	var d = json.NewDecoder(req.Body)
	d.UseNumber()
	if err := d.Decode(dst); err != nil {
		return errMalformed
	}
	return nil
}

func writeJSON(w http.ResponseWriter, thing interface{}) error {
	b, err := json.Marshal(thing)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
	return nil
}

func sendSuccess(w http.ResponseWriter) error {
	return writeJSON(w, struct {
		Status string `json:"status"`
	}{"success"})
}

func sendError(w http.ResponseWriter, err error) {
	log.Printf("error encountered: %s", err)
	writeJSON(w, struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}{"failure", err.Error()})
}
