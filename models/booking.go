package models

// Booking status values as reported by the server.
const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking is a server-owned booking record. The client only reads it for
// display and never mutates it locally.
type Booking struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status"`
}

// BookingInput is the POST /booking request body.
type BookingInput struct {
	RoomID    int    `json:"roomId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
