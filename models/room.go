package models

// Room is read-only reference data describing a bookable meeting room.
type Room struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
