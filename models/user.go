package models

// UserProfile is the authenticated user's identity snapshot. It is replaced
// wholesale on each successful profile fetch, never mutated in place.
type UserProfile struct {
	ID         int    `json:"id"`
	TelegramID string `json:"telegramId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName,omitempty"`
	Username   string `json:"username,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// ProfileStatistics carries the booking counters shown on the profile screen.
type ProfileStatistics struct {
	TotalBookings    int `json:"totalBookings"`
	UpcomingBookings int `json:"upcomingBookings"`
}

// Profile is the GET /profile response.
type Profile struct {
	User       UserProfile       `json:"user"`
	Statistics ProfileStatistics `json:"statistics"`
}
