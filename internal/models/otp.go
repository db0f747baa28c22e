package models

import "time"

// OTP is a one-time code issued to an administrator before a sensitive action
type OTP struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// OTPRequest represents the request body for issuing a code
type OTPRequest struct {
	Purpose string `json:"purpose"`
}

// OTPVerifyRequest represents the request body for redeeming a code
type OTPVerifyRequest struct {
	OTP     string `json:"otp"`
	Purpose string `json:"purpose"`
}
