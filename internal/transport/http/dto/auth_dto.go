package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Channel  string `json:"channel"`
	IP       string `json:"ip,omitempty"`
}

type LoginUserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Code     string `json:"code"`
}

type LoginResponse struct {
	Token        string            `json:"token"`
	ExpiresInSec int64             `json:"expires_in_sec"`
	User         LoginUserResponse `json:"user"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
