package workflow

// Banner texts.
const (
	MsgEnterEmail       = "Please enter an email address"
	MsgEnterCode        = "Please enter OTP code"
	MsgEnterEmailCode   = "Please enter both email and OTP code"
	MsgRequestFailed    = "Failed to request OTP"
	MsgSendFailed       = "Failed to send OTP"
	MsgVerifyFailed     = "Failed to verify OTP"
	MsgListOTPsFailed   = "Failed to fetch OTP data"
	MsgListUsersFailed  = "Failed to fetch eligible users"
	MsgCopyFailed       = "Failed to copy token"
	MsgNetworkError     = "Network error occurred"
	MsgSent             = "OTP sent successfully"
	MsgVerified         = "OTP verified successfully"
	MsgOTPsRefreshed    = "OTP data refreshed"
	MsgUsersRefreshed   = "Eligible users data refreshed"
	msgRequestedPattern = "OTP requested successfully for %s"
)
