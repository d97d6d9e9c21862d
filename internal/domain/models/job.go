package models

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NotAvailable is the placeholder written for fields the page did not yield.
const NotAvailable = "N/A"

// Job is one posting as persisted in the shared store. Records are
// write-once: cleanup deletes them, nothing ever updates them. SourceLink is
// the natural key, but uniqueness is only restored between cleanup sweeps,
// so several records may share one link at any given moment.
type Job struct {
	ID          int64  `json:"id,omitempty" gorm:"primaryKey"`
	Title       string `json:"title"`
	Company     string `json:"company" validate:"required"`
	JobTitle    string `json:"job_title"`
	Experience  string `json:"experience"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ApplyLink   string `json:"apply_link"`
	SourceLink  string `json:"source_link" validate:"required,url"`
	DatePosted  string `json:"date_posted"`
}

var validate = validator.New()

// Validate reports whether the record is complete enough to be admitted.
func (j Job) Validate() error {
	if strings.EqualFold(strings.TrimSpace(j.Company), NotAvailable) {
		return errors.New("company is a placeholder value")
	}
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job record: %w", err)
	}
	return nil
}

// PostedDate parses DatePosted; ok is false for absent or unparsable dates.
func (j Job) PostedDate() (time.Time, bool) {
	raw := strings.TrimSpace(j.DatePosted)
	if raw == "" {
		return time.Time{}, false
	}
	date, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Precedes orders records within one source-link group: earliest posted date
// first, unknown dates after all known ones, ID as the tie-breaker. The
// record that precedes all others in its group is the one cleanup keeps.
func (j Job) Precedes(other Job) bool {
	date, known := j.PostedDate()
	otherDate, otherKnown := other.PostedDate()

	if known != otherKnown {
		return known
	}
	if known && !date.Equal(otherDate) {
		return date.Before(otherDate)
	}
	return j.ID < other.ID
}
