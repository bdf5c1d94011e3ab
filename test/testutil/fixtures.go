package testutil

import (
	"bytes"

	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// NewTestLogger creates a logger for testing.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// SampleRecord returns a generated OTP as the API reports it.
func SampleRecord(email string) models.OTPRecord {
	return models.OTPRecord{
		Email:     email,
		Token:     "123456",
		ID:        "otp-1",
		CreatedAt: "2025-06-06T10:00:00.000Z",
		ExpiresAt: "2025-06-06T10:10:00.000Z",
	}
}

// SampleOTPEntries returns an admin OTP listing covering every status.
func SampleOTPEntries() []models.OTPEntry {
	return []models.OTPEntry{
		{
			Email:     "alice@example.com",
			Code:      "482913",
			Status:    models.OTPStatusActive,
			CreatedAt: "2025-06-06T10:00:00.000Z",
			ExpiresAt: "2025-06-06T10:10:00.000Z",
		},
		{
			Email:     "bob@example.com",
			Code:      "120044",
			Status:    models.OTPStatusUsed,
			CreatedAt: "2025-06-06T09:00:00.000Z",
			ExpiresAt: "2025-06-06T09:10:00.000Z",
		},
		{
			Email:     "carol@example.com",
			Code:      "993017",
			Status:    models.OTPStatusExpired,
			CreatedAt: "2025-06-05T08:00:00.000Z",
			ExpiresAt: "2025-06-05T08:10:00.000Z",
		},
	}
}

// SampleUsers returns an admin eligible-users listing.
func SampleUsers() []models.EligibleUser {
	return []models.EligibleUser{
		{Name: "Alice Admin", Email: "alice@example.com", Role: "admin", Status: "active", LastLogin: "2025-06-06T10:00:00.000Z"},
		{Name: "Bob Builder", Email: "bob@example.com", Role: "user", Status: "inactive", LastLogin: ""},
	}
}
