package common

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string            `json:"error" example:"invalid signature"`
	Code    string            `json:"code,omitempty" example:"INVALID_SIGNATURE"`
	Details map[string]string `json:"details,omitempty"`
}

// StatusResponse is the acknowledgement returned to webhook senders
type StatusResponse struct {
	Status  string `json:"status" example:"ok"`
	Message string `json:"message,omitempty"`
}

// OK is the plain acknowledgement
func OK() StatusResponse {
	return StatusResponse{Status: "ok"}
}
