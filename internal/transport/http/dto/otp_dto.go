package dto

type GenerateOTPRequest struct {
	Subject string `json:"subject"`
	Purpose string `json:"purpose"`
	IP      string `json:"ip,omitempty"`
}

type GenerateOTPResponse struct {
	Code int64 `json:"code"`
}

type ValidateOTPRequest struct {
	Subject string `json:"subject"`
	Purpose string `json:"purpose"`
	Code    int64  `json:"code"`
}

type ValidateOTPResponse struct {
	OK bool `json:"ok"`
}
