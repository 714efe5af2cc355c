package model

// Listing status values. An empty status is allowed for rows created by
// older exports that predate the status column.
const (
	StatusAvailable = "available"
	StatusSoldOut   = "sold-out"
)

// Listing represents one real-estate listing.
// The ID is a UUID assigned at creation and is the record's identity for all
// lookups; table position is never used as identity. FolderPath references
// the listing's image folder and is fixed at creation, even if the category
// is edited afterwards.
type Listing struct {
	ID         string
	Category   string
	Project    string
	Price      float64
	Area       *float64 // square meters; nil when never supplied
	Phone      string
	Profit     string
	Notice     string
	Status     string
	FolderPath string
}

// HasArea returns true if the listing has an area value.
func (l *Listing) HasArea() bool {
	return l.Area != nil
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	c := *l
	if l.Area != nil {
		a := *l.Area
		c.Area = &a
	}
	return &c
}
