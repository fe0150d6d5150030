package models

// AdminTokenRequest defines the structure for admin token requests
type AdminTokenRequest struct {
	Key string `json:"key" binding:"required"`
}

// AdminTokenResponse carries a signed admin session token
type AdminTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // Seconds
}

// SpinRequest defines the body of a spin request
type SpinRequest struct {
	Phone string `json:"phone"`
}
