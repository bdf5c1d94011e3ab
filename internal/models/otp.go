package models

// GenerateRequest asks the API to create an OTP for an email address.
type GenerateRequest struct {
	Email string `json:"email"`
}

// SendEmailRequest asks the API to deliver a generated OTP by email.
type SendEmailRequest struct {
	Token string `json:"token"`
}

// VerifyRequest checks a code the user received. The API calls the code "token".
type VerifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// OTPRecord is the result of a successful generate call.
type OTPRecord struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

// IsZero reports whether no OTP is currently held.
func (r OTPRecord) IsZero() bool {
	return r == OTPRecord{}
}

// OTP statuses reported by the admin listing.
const (
	OTPStatusActive  = "active"
	OTPStatusUsed    = "used"
	OTPStatusExpired = "expired"
)

// OTPEntry is one row of the admin OTP listing.
type OTPEntry struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

// OTPListResponse wraps GET /api/admin/otp-list.
type OTPListResponse struct {
	OTPs []OTPEntry `json:"otps"`
}

// EligibleUser is one row of the admin eligible-users listing.
type EligibleUser struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	LastLogin string `json:"lastLogin"`
}

// EligibleUsersResponse wraps GET /api/admin/eligible-users.
type EligibleUsersResponse struct {
	Users []EligibleUser `json:"users"`
}
