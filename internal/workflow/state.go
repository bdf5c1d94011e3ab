package workflow

import (
	"fmt"

	"github.com/TheMichaelB/otpdesk/internal/models"
)

// Tab identifies a panel of the page.
type Tab string

const (
	TabRequest Tab = "request"
	TabSend    Tab = "send"
	TabVerify  Tab = "verify"
	TabView    Tab = "view"
)

// Label is the tab's display name.
func (t Tab) Label() string {
	switch t {
	case TabRequest:
		return "Request OTP"
	case TabSend:
		return "Send OTP"
	case TabVerify:
		return "Verify OTP"
	case TabView:
		return "View Data"
	default:
		return string(t)
	}
}

// ParseTab accepts a tab id.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabRequest, TabSend, TabVerify, TabView:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrUnknownTab, s)
}

// MessageKind classifies the banner.
type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the transient banner. Seq identifies which show produced it.
type Message struct {
	Kind MessageKind `json:"kind"`
	Text string      `json:"text"`
	Seq  uint64      `json:"-"`
}

// Visible reports whether the banner is shown.
func (m Message) Visible() bool {
	return m.Text != ""
}

// Fields holds the form inputs. Inputs are never shared between tabs.
type Fields struct {
	RequestEmail string `json:"request_email"`
	SendToken    string `json:"send_token"`
	VerifyEmail  string `json:"verify_email"`
	VerifyCode   string `json:"verify_code"`
}

// Field names a form input.
type Field int

const (
	FieldRequestEmail Field = iota
	FieldSendToken
	FieldVerifyEmail
	FieldVerifyCode
)

// Op is a network action of the page.
type Op int

const (
	OpRequest Op = iota
	OpSend
	OpVerify
	OpListOTPs
	OpListUsers
)

func (o Op) String() string {
	switch o {
	case OpRequest:
		return "request_otp"
	case OpSend:
		return "send_otp"
	case OpVerify:
		return "verify_otp"
	case OpListOTPs:
		return "list_otps"
	case OpListUsers:
		return "list_eligible_users"
	default:
		return "unknown"
	}
}

// Loading has one in-flight flag per action.
type Loading struct {
	Request   bool `json:"request"`
	Send      bool `json:"send"`
	Verify    bool `json:"verify"`
	ListOTPs  bool `json:"list_otps"`
	ListUsers bool `json:"list_users"`
}

// Get returns the flag for op.
func (l Loading) Get(op Op) bool {
	switch op {
	case OpRequest:
		return l.Request
	case OpSend:
		return l.Send
	case OpVerify:
		return l.Verify
	case OpListOTPs:
		return l.ListOTPs
	case OpListUsers:
		return l.ListUsers
	}
	return false
}

func (l Loading) with(op Op, v bool) Loading {
	switch op {
	case OpRequest:
		l.Request = v
	case OpSend:
		l.Send = v
	case OpVerify:
		l.Verify = v
	case OpListOTPs:
		l.ListOTPs = v
	case OpListUsers:
		l.ListUsers = v
	}
	return l
}

// Any reports whether any action is in flight.
func (l Loading) Any() bool {
	return l.Request || l.Send || l.Verify || l.ListOTPs || l.ListUsers
}

// State is the whole page. It is a value; transitions go through Reduce.
type State struct {
	ActiveTab    Tab                   `json:"active_tab"`
	MenuOpen     bool                  `json:"menu_open"`
	Fields       Fields                `json:"fields"`
	Record       models.OTPRecord      `json:"record"`
	Message      Message               `json:"message"`
	Loading      Loading               `json:"loading"`
	CopyFeedback bool                  `json:"copy_feedback"`
	OTPs         []models.OTPEntry     `json:"otps,omitempty"`
	Users        []models.EligibleUser `json:"users,omitempty"`

	copySeq       uint64
	viewEnabled   bool
	codeMaxLength int
}

// NewState returns the initial page state.
func NewState(codeMaxLength int, viewEnabled bool) State {
	return State{
		ActiveTab:     TabRequest,
		codeMaxLength: codeMaxLength,
		viewEnabled:   viewEnabled,
	}
}

// ShowSendPanel reports whether the Request tab offers its embedded send
// button instead of the request button.
func (s State) ShowSendPanel() bool {
	return s.Record.Token != ""
}

// Tabs lists the reachable tabs in display order.
func (s State) Tabs() []Tab {
	tabs := []Tab{TabRequest, TabSend, TabVerify}
	if s.viewEnabled {
		tabs = append(tabs, TabView)
	}
	return tabs
}

// TabEnabled reports whether t can be selected.
func (s State) TabEnabled(t Tab) bool {
	for _, tab := range s.Tabs() {
		if tab == t {
			return true
		}
	}
	return false
}

// CodeMaxLength is the cap applied to code inputs.
func (s State) CodeMaxLength() int {
	return s.codeMaxLength
}
