package dish

// Filter defines parameters for searching dishes.
type Filter struct {
	// Keyword performs a case-insensitive substring match across name,
	// memo and recipe URL. Empty means no text filter.
	Keyword string

	// Tags must each independently substring-match the stored comma-joined
	// tag text. This is deliberately not an exact membership test: filtering
	// on "和食" matches any row whose tag text contains it.
	Tags []string

	// FavoriteOnly keeps only favorited dishes.
	FavoriteOnly bool

	// PublicOnly keeps only dishes published to the gallery.
	PublicOnly bool

	// Limit is the maximum number of rows. Default: 50, max: 200.
	Limit int
}

const (
	defaultLimit = 50

	// MaxLimit caps a single page of results.
	MaxLimit = 200
)

// normalize applies defaults and clamps values.
func (f *Filter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}
