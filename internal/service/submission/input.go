package submission

import (
	"strings"

	"github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
)

// Submission is one raw inbound form submission.
type Submission struct {
	Name      string
	Memo      string
	RecipeURL string
	TagsRaw   string
	Favorite  bool
	IsPublic  bool

	// Honeypot is the value of a form field that is invisible to humans.
	// Any non-empty value marks the submission as automated.
	Honeypot string

	// VerifyToken is a one-shot challenge response token, present when the
	// client completed a verification challenge during this submission
	// instead of holding a standing verified flag on the session.
	VerifyToken string

	Photo *dish.Photo
}

// normalize trims the free-text fields in place.
func (s *Submission) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Memo = strings.TrimSpace(s.Memo)
	s.RecipeURL = strings.TrimSpace(s.RecipeURL)
}
