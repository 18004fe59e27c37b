package models

// AvailabilitySlot is one free interval for a (room, date) pair. Times are
// RFC 3339 strings as sent by the server; the client treats them as opaque
// beyond display formatting.
type AvailabilitySlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Availability is the GET /booking/rooms/{id}/availability response.
type Availability struct {
	AvailableSlots []AvailabilitySlot `json:"availableSlots"`
}
