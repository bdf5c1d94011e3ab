package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/models"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
	"github.com/TheMichaelB/otpdesk/test/testutil"
)

func render(t *testing.T, s workflow.State) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).Render(&buf, s))
	return buf.String()
}

func TestRenderRequestTab(t *testing.T) {
	s := workflow.NewState(6, false)
	out := render(t, s)

	assert.Contains(t, out, "Logo <"+LogoURL+">")
	assert.Contains(t, out, "[ Request OTP ]")
	assert.Contains(t, out, "Email Address: Enter email address")
	assert.Contains(t, out, "[ Request OTP ]")
	assert.NotContains(t, out, "View Data")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderRequestLoading(t *testing.T) {
	s := workflow.NewState(6, false)
	s.Fields.RequestEmail = "a@b.com"
	s.Loading.Request = true

	out := render(t, s)
	assert.Contains(t, out, "Email Address: a@b.com")
	assert.Contains(t, out, "( Requesting... )")
}

func TestRenderSendPanel(t *testing.T) {
	s := workflow.NewState(6, false)
	s.Record = models.OTPRecord{Email: "a@b.com", Token: "123456"}

	out := render(t, s)
	assert.Contains(t, out, "123456  (copy)")
	assert.Contains(t, out, "Send this OTP to the user's email address")
	assert.Contains(t, out, "[ Send OTP ]")
	assert.NotContains(t, out, "Requesting...")

	s.CopyFeedback = true
	s.Loading.Send = true
	out = render(t, s)
	assert.Contains(t, out, "123456  ✔ copied")
	assert.Contains(t, out, "( Sending... )")
}

func TestRenderBanner(t *testing.T) {
	s := workflow.NewState(6, false)
	s.Message = workflow.Message{Kind: workflow.MessageError, Text: workflow.MsgEnterEmail}
	assert.Contains(t, render(t, s), "✖ Please enter an email address")

	s.Message = workflow.Message{Kind: workflow.MessageSuccess, Text: workflow.MsgSent}
	assert.Contains(t, render(t, s), "✔ OTP sent successfully")

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).Banner(&buf, workflow.Message{}))
	assert.Empty(t, buf.String())
}

func TestRenderVerifyTab(t *testing.T) {
	s := workflow.NewState(6, false)
	s.ActiveTab = workflow.TabVerify
	s.Fields.VerifyEmail = "a@b.com"
	s.Loading.Verify = true

	out := render(t, s)
	assert.Contains(t, out, "Verify OTP code sent to an email address")
	assert.Contains(t, out, "Email Address: a@b.com")
	assert.Contains(t, out, "OTP Code: Enter OTP code (6 characters)")
	assert.Contains(t, out, "( Verifying... )")
}

func TestRenderMenuOpen(t *testing.T) {
	s := workflow.NewState(6, true)
	s.ActiveTab = workflow.TabSend
	s.MenuOpen = true

	out := render(t, s)
	assert.Contains(t, out, " > 2. Send OTP")
	assert.Contains(t, out, "   4. View Data")
	assert.Contains(t, out, "OTP Code: Enter OTP code")
}

func TestRenderViewTables(t *testing.T) {
	s := workflow.NewState(6, true)
	s.ActiveTab = workflow.TabView

	out := render(t, s)
	assert.Contains(t, out, `No OTP data available. Click "Refresh OTP Data" to load data.`)
	assert.Contains(t, out, `No eligible users data available.`)

	s.OTPs = []models.OTPEntry{{Email: "a@b.com", Code: "123456", Status: models.OTPStatusActive, CreatedAt: "c", ExpiresAt: "e"}}
	s.Users = []models.EligibleUser{{Name: "Alice", Email: "a@b.com", Role: "admin", Status: "inactive", LastLogin: "l"}}

	out = render(t, s)
	assert.Contains(t, out, "OTP CODE")
	assert.Contains(t, out, "LAST LOGIN")
	assert.Contains(t, out, "Active")
	assert.Contains(t, out, "Inactive")

	lines := strings.Split(out, "\n")
	var header, row string
	for i, l := range lines {
		if strings.Contains(l, "OTP CODE") {
			header, row = l, lines[i+1]
		}
	}
	require.NotEmpty(t, row)
	assert.Equal(t, strings.Index(header, "OTP CODE"), strings.Index(row, "123456"), "columns aligned")
}

func TestRenderColor(t *testing.T) {
	s := workflow.NewState(6, false)
	s.Message = workflow.Message{Kind: workflow.MessageSuccess, Text: workflow.MsgSent}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(true).Render(&buf, s))

	assert.Contains(t, buf.String(), "\x1b[32m")
	assert.Contains(t, buf.String(), "\x1b]8;;/\x1b\\Logo")
}

func TestRenderWriteError(t *testing.T) {
	assert.Error(t, NewRenderer(false).Render(failWriter{}, workflow.NewState(6, false)))
}

func TestRenderCodeLengthHint(t *testing.T) {
	s := workflow.NewState(4, false)
	s.ActiveTab = workflow.TabSend

	assert.Contains(t, render(t, s), "OTP Code: Enter OTP code (4 characters)")

	s.Fields.SendToken = "1234"
	out := render(t, s)
	assert.Contains(t, out, "OTP Code: 1234")
	assert.NotContains(t, out, "characters")
}

func TestRenderOTPTableStatuses(t *testing.T) {
	s := workflow.NewState(6, true)
	s.OTPs = testutil.SampleOTPEntries()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(false).OTPTable(&buf, s))
	out := buf.String()

	for _, entry := range s.OTPs {
		assert.Contains(t, out, entry.Email)
		assert.Contains(t, out, entry.Code)
	}
	assert.Contains(t, out, "Active")
	assert.Contains(t, out, "Used")
	assert.Contains(t, out, "Expired")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(s.OTPs)+1)
}
