package models

// AuthRequest is the POST /auth/telegram request body. InitData is the
// host-provided opaque authentication payload.
type AuthRequest struct {
	InitData string `json:"initData"`
	Phone    string `json:"phone,omitempty"`
}

// AuthResponse is the successful authentication response.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// VerifyResponse is the GET /auth/verify response.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}
