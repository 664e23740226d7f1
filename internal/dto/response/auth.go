package response

type LoginResponse struct {
	ExpiresInSec int `json:"expires_in_sec"`
	// Code is only populated in direct-return mode.
	Code string `json:"code_dev,omitempty"`
}

type VerifyResponse struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason,omitempty"`
}
