package domain

import (
	"strings"
	"time"
)

// Dish is one logged recipe entry. Name and Memo are free text; at least one
// of them must be non-empty at creation time (enforced by the admission
// pipeline, not by the schema). Tags is the comma-joined normalized tag text
// as stored in the database.
type Dish struct {
	ID        int64
	Name      string
	Memo      string
	RecipeURL *string
	Tags      string
	Favorite  bool
	IsPublic  bool
	OwnerID   *int64
	PhotoPath *string

	// EditToken lets an anonymously created dish be claimed by an account
	// later. It is a capability secret: matching it is the only access
	// control on the claim operation. Cleared once claimed.
	EditToken          *string
	EditTokenCreatedAt *time.Time

	CreatedAt time.Time
}

// TagList splits the stored comma-joined tag text back into individual tags.
func (d *Dish) TagList() []string {
	return SplitTagField(d.Tags)
}

// HasValidRecipeURL reports whether RecipeURL is absent or starts with an
// http(s) scheme. Anything else is rejected by the URL gate.
func (d *Dish) HasValidRecipeURL() bool {
	if d.RecipeURL == nil || *d.RecipeURL == "" {
		return true
	}
	return IsValidRecipeURL(*d.RecipeURL)
}

// IsValidRecipeURL reports whether url starts with http:// or https://.
func IsValidRecipeURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
