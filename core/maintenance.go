package core

import (
	"log"
	"time"

	"github.com/ryan-gr/50001-1D-Backend/util"
)

// ApproveDue moves every approved poster whose posting date has arrived to
// posted. It runs lazily before reads that can return posted items, and is
// idempotent: a second pass over the same table is a no-op.
func (c *DB) ApproveDue(now time.Time) error {

	posters, err := c.GetPosters(&Filter{
		Where: []Condition{{Column: "status", Values: []string{string(StatusApproved)}}},
	})
	if err != nil {
		return err
	}

	for _, p := range posters {
		if p.DatePosted == "" {
			continue
		}
		due, err := util.ParseDateTime(p.DatePosted)
		if err != nil {
			continue // unparseable dates never fire
		}
		if now.Before(due) {
			continue
		}
		if err := c.SetPosterStatus(p.ID, StatusPosted); err != nil {
			return err
		}
		log.Printf("Posted %d", p.ID)
	}
	return nil
}

// ExpireDue moves every posted poster past its expiry date to expired.
func (c *DB) ExpireDue(now time.Time) error {

	posters, err := c.GetPosters(&Filter{
		Where: []Condition{{Column: "status", Values: []string{string(StatusPosted)}}},
	})
	if err != nil {
		return err
	}

	for _, p := range posters {
		if p.DateExpiry == "" {
			continue
		}
		due, err := util.ParseDateTime(p.DateExpiry)
		if err != nil {
			continue
		}
		if now.Before(due) {
			continue
		}
		if err := c.SetPosterStatus(p.ID, StatusExpired); err != nil {
			return err
		}
		log.Printf("Expired %d", p.ID)
	}
	return nil
}
