package photo

import "time"

// Photo is an image attached to an event by one of its managers.
type Photo struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	URL        string    `json:"url"`
	Caption    *string   `json:"caption,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
