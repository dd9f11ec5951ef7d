package journal

import (
	"errors"
	"time"
)

var (
	// ErrNoPhotos is returned when a journal is requested for a trip without photos.
	ErrNoPhotos = errors.New("please upload at least one photo to generate a journal")
	// ErrInvalidJournal is returned when a journal lacks a title, a summary or entries.
	ErrInvalidJournal = errors.New("generated journal has invalid format, please try again")
	// ErrNotFound is returned when a trip has no journal.
	ErrNotFound = errors.New("journal not found")
	// ErrPublishingDisabled is returned by Publish when no Ghost blog is configured.
	ErrPublishingDisabled = errors.New("journal publishing is not configured")
)

// Journal is the travel diary of a trip.
type Journal struct {
	TripID      int64     `json:"tripId"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Entries     []Entry   `json:"entries"`
	GhostPostID string    `json:"ghostPostId,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Entry is one dated journal paragraph.
type Entry struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Validate checks the fields every journal must carry.
func (j Journal) Validate() error {
	if j.Title == "" || j.Summary == "" || j.Entries == nil {
		return ErrInvalidJournal
	}
	return nil
}
