package workflow

import (
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// Action is a state transition request.
type Action interface {
	action()
}

// SendSource says which control triggered a send.
type SendSource int

const (
	// FromRecord is the Request tab's embedded button; it sends the captured token.
	FromRecord SendSource = iota
	// FromSendField is the standalone Send tab; it sends the tab's own input.
	FromSendField
)

func (s SendSource) String() string {
	if s == FromSendField {
		return "send_field"
	}
	return "record"
}

type (
	// SelectTab activates a tab and closes the menu.
	SelectTab struct{ Tab Tab }
	// ToggleMenu opens or closes the narrow-viewport menu.
	ToggleMenu struct{}
	// SetField replaces an input's value.
	SetField struct {
		Field Field
		Value string
	}
	// Begin marks op in flight.
	Begin struct{ Op Op }
	// End clears op's in-flight flag.
	End struct{ Op Op }
	// ShowMessage replaces the banner.
	ShowMessage struct {
		Kind MessageKind
		Text string
		Seq  uint64
	}
	// ExpireMessage clears the banner if it still carries Seq, or
	// unconditionally when Force is set.
	ExpireMessage struct {
		Seq   uint64
		Force bool
	}
	// RequestSucceeded stores a freshly generated OTP.
	RequestSucceeded struct{ Record models.OTPRecord }
	// SendSucceeded records that Token was emailed.
	SendSucceeded struct {
		Token  string
		Source SendSource
	}
	// VerifySucceeded clears the verify form.
	VerifySucceeded struct{}
	// OTPsLoaded replaces the admin OTP table.
	OTPsLoaded struct{ OTPs []models.OTPEntry }
	// UsersLoaded replaces the admin users table.
	UsersLoaded struct{ Users []models.EligibleUser }
	// CopySucceeded turns on copy feedback.
	CopySucceeded struct{ Seq uint64 }
	// CopyFeedbackExpired turns copy feedback off if Seq is still current.
	CopyFeedbackExpired struct{ Seq uint64 }
)

func (SelectTab) action()           {}
func (ToggleMenu) action()          {}
func (SetField) action()            {}
func (Begin) action()               {}
func (End) action()                 {}
func (ShowMessage) action()         {}
func (ExpireMessage) action()       {}
func (RequestSucceeded) action()    {}
func (SendSucceeded) action()       {}
func (VerifySucceeded) action()     {}
func (OTPsLoaded) action()          {}
func (UsersLoaded) action()         {}
func (CopySucceeded) action()       {}
func (CopyFeedbackExpired) action() {}

// Reduce returns the state that results from applying a to s. It has no side
// effects; unknown or disallowed actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SelectTab:
		if !s.TabEnabled(a.Tab) {
			return s
		}
		s.ActiveTab = a.Tab
		s.MenuOpen = false

	case ToggleMenu:
		s.MenuOpen = !s.MenuOpen

	case SetField:
		switch a.Field {
		case FieldRequestEmail:
			s.Fields.RequestEmail = a.Value
		case FieldSendToken:
			s.Fields.SendToken = capRunes(a.Value, s.codeMaxLength)
		case FieldVerifyEmail:
			s.Fields.VerifyEmail = a.Value
		case FieldVerifyCode:
			s.Fields.VerifyCode = capRunes(a.Value, s.codeMaxLength)
		}

	case Begin:
		s.Loading = s.Loading.with(a.Op, true)

	case End:
		s.Loading = s.Loading.with(a.Op, false)

	case ShowMessage:
		s.Message = Message{Kind: a.Kind, Text: a.Text, Seq: a.Seq}

	case ExpireMessage:
		if a.Force || s.Message.Seq == a.Seq {
			s.Message = Message{}
		}

	case RequestSucceeded:
		s.Record = a.Record
		s.Fields.RequestEmail = ""

	case SendSucceeded:
		if s.Record.Token == a.Token {
			s.Record = models.OTPRecord{}
		}
		if a.Source == FromSendField {
			s.Fields.SendToken = ""
		}

	case VerifySucceeded:
		s.Fields.VerifyEmail = ""
		s.Fields.VerifyCode = ""

	case OTPsLoaded:
		s.OTPs = a.OTPs

	case UsersLoaded:
		s.Users = a.Users

	case CopySucceeded:
		s.CopyFeedback = true
		s.copySeq = a.Seq

	case CopyFeedbackExpired:
		if s.copySeq == a.Seq {
			s.CopyFeedback = false
		}
	}

	return s
}

func capRunes(v string, max int) string {
	if max <= 0 {
		return v
	}
	r := []rune(v)
	if len(r) <= max {
		return v
	}
	return string(r[:max])
}
