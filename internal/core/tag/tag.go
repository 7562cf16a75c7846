package tag

import "time"

// Tag is a catalog attribute that events can be labeled with.
//
// The catalog itself is curated by admins; attaching tags to events is the
// event domain's concern.
type Tag struct {
	ID        string    `json:"id"` // UUIDv7
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}
