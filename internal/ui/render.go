package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

// Renderer draws page snapshots as plain or coloured text. It is not safe
// for concurrent use.
type Renderer struct {
	header Header
	color  bool

	success *color.Color
	failure *color.Color
	active  *color.Color
	muted   *color.Color
	bold    *color.Color

	upper cases.Caser
	title cases.Caser
}

// NewRenderer creates a renderer. Colour codes are only emitted when
// colorize is set, regardless of the process-wide color.NoColor.
func NewRenderer(colorize bool) *Renderer {
	r := &Renderer{
		header:  DefaultHeader(),
		color:   colorize,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		active:  color.New(color.FgWhite, color.BgRed, color.Bold),
		muted:   color.New(color.Faint),
		bold:    color.New(color.Bold),
		upper:   cases.Upper(language.English),
		title:   cases.Title(language.English),
	}

	for _, c := range []*color.Color{r.success, r.failure, r.active, r.muted, r.bold} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes the whole page: header, banner, tabs and the active panel.
func (r *Renderer) Render(w io.Writer, s workflow.State) error {
	ew := &errWriter{w: w}

	if err := r.header.Render(ew, r.color); err != nil {
		return err
	}
	ew.printf("\n")

	r.renderBanner(ew, s.Message)
	r.renderTabs(ew, s)
	ew.printf("\n")

	switch s.ActiveTab {
	case workflow.TabRequest:
		r.renderRequest(ew, s)
	case workflow.TabSend:
		r.renderSend(ew, s)
	case workflow.TabVerify:
		r.renderVerify(ew, s)
	case workflow.TabView:
		r.renderView(ew, s)
	}

	return ew.err
}

// Banner writes only the message line, if any.
func (r *Renderer) Banner(w io.Writer, m workflow.Message) error {
	ew := &errWriter{w: w}
	r.renderBanner(ew, m)
	return ew.err
}

func (r *Renderer) renderBanner(w *errWriter, m workflow.Message) {
	if !m.Visible() {
		return
	}
	switch m.Kind {
	case workflow.MessageSuccess:
		w.printf("%s\n\n", r.success.Sprint("✔ "+m.Text))
	default:
		w.printf("%s\n\n", r.failure.Sprint("✖ "+m.Text))
	}
}

func (r *Renderer) renderTabs(w *errWriter, s workflow.State) {
	if s.MenuOpen {
		w.printf("%s  [x]\n", r.bold.Sprint(s.ActiveTab.Label()))
		for i, tab := range s.Tabs() {
			marker := " "
			if tab == s.ActiveTab {
				marker = ">"
			}
			w.printf(" %s %d. %s\n", marker, i+1, tab.Label())
		}
		return
	}

	parts := make([]string, 0, len(s.Tabs()))
	for _, tab := range s.Tabs() {
		if tab == s.ActiveTab {
			parts = append(parts, r.active.Sprintf("[ %s ]", tab.Label()))
		} else {
			parts = append(parts, fmt.Sprintf("  %s  ", tab.Label()))
		}
	}
	w.printf("%s\n", strings.Join(parts, " | "))
}

func (r *Renderer) renderRequest(w *errWriter, s workflow.State) {
	r.panelTitle(w, "Request OTP", "Generate OTP for an email address")
	r.field(w, "Email Address", s.Fields.RequestEmail, "Enter email address")

	if !s.ShowSendPanel() {
		r.button(w, s.Loading.Request, "Request OTP", "Requesting...")
		return
	}

	w.printf("\n  %s\n", r.bold.Sprint(s.Record.Email))
	copyMark := "(copy)"
	if s.CopyFeedback {
		copyMark = r.success.Sprint("✔ copied")
	}
	w.printf("  %s  %s\n", r.bold.Sprint(s.Record.Token), copyMark)

	w.printf("\n  %s\n", r.bold.Sprint("Send OTP"))
	w.printf("  %s\n", r.muted.Sprint("Send this OTP to the user's email address"))
	r.button(w, s.Loading.Send, "Send OTP", "Sending...")
}

func (r *Renderer) renderSend(w *errWriter, s workflow.State) {
	r.panelTitle(w, "Send OTP", "Send OTP code to an email address")
	r.codeField(w, s, s.Fields.SendToken)
	r.button(w, s.Loading.Send, "Send OTP", "Sending...")
}

func (r *Renderer) renderVerify(w *errWriter, s workflow.State) {
	r.panelTitle(w, "Verify OTP", "Verify OTP code sent to an email address")
	r.field(w, "Email Address", s.Fields.VerifyEmail, "Enter email address")
	r.codeField(w, s, s.Fields.VerifyCode)
	r.button(w, s.Loading.Verify, "Verify OTP", "Verifying...")
}

func (r *Renderer) renderView(w *errWriter, s workflow.State) {
	r.panelTitle(w, "View OTP Data", "View all generated OTPs and eligible users")
	r.button(w, s.Loading.ListOTPs, "Refresh OTP Data", "Refreshing...")
	r.button(w, s.Loading.ListUsers, "Refresh Eligible Users", "Refreshing...")

	w.printf("\n  %s\n", r.bold.Sprint("Generated OTPs"))
	r.writeOTPTable(w, s)

	w.printf("\n  %s\n", r.bold.Sprint("Eligible Users"))
	r.writeUserTable(w, s)
}

// OTPTable writes the admin OTP listing.
func (r *Renderer) OTPTable(w io.Writer, s workflow.State) error {
	ew := &errWriter{w: w}
	r.writeOTPTable(ew, s)
	return ew.err
}

// UserTable writes the admin eligible-users listing.
func (r *Renderer) UserTable(w io.Writer, s workflow.State) error {
	ew := &errWriter{w: w}
	r.writeUserTable(ew, s)
	return ew.err
}

func (r *Renderer) writeOTPTable(w *errWriter, s workflow.State) {
	if len(s.OTPs) == 0 {
		w.printf("  %s\n", r.muted.Sprint(`No OTP data available. Click "Refresh OTP Data" to load data.`))
		return
	}

	rows := make([][]string, 0, len(s.OTPs))
	for _, o := range s.OTPs {
		rows = append(rows, []string{o.Email, o.Code, r.status(o.Status), o.CreatedAt, o.ExpiresAt})
	}
	r.table(w, []string{"email", "otp code", "status", "created at", "expires at"}, rows)
}

func (r *Renderer) writeUserTable(w *errWriter, s workflow.State) {
	if len(s.Users) == 0 {
		w.printf("  %s\n", r.muted.Sprint(`No eligible users data available. Click "Refresh Eligible Users" to load data.`))
		return
	}

	rows := make([][]string, 0, len(s.Users))
	for _, u := range s.Users {
		rows = append(rows, []string{u.Name, u.Email, u.Role, r.status(u.Status), u.LastLogin})
	}
	r.table(w, []string{"name", "email", "role", "status", "last login"}, rows)
}

func (r *Renderer) table(w *errWriter, columns []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = r.upper.String(c)
	}
	fmt.Fprintf(tw, "  %s\n", strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil && w.err == nil {
		w.err = err
	}
}

func (r *Renderer) status(s string) string {
	if s == "" {
		return "-"
	}
	return r.title.String(s)
}

func (r *Renderer) panelTitle(w *errWriter, title, subtitle string) {
	w.printf("  %s\n  %s\n\n", r.bold.Sprint(title), r.muted.Sprint(subtitle))
}

func (r *Renderer) field(w *errWriter, label, value, placeholder string) {
	if value == "" {
		value = r.muted.Sprint(placeholder)
	}
	w.printf("  %s: %s\n", label, value)
}

func (r *Renderer) codeField(w *errWriter, s workflow.State, value string) {
	placeholder := "Enter OTP code"
	if n := s.CodeMaxLength(); n > 0 {
		placeholder = fmt.Sprintf("%s (%d characters)", placeholder, n)
	}
	r.field(w, "OTP Code", value, placeholder)
}

func (r *Renderer) button(w *errWriter, loading bool, idle, busy string) {
	if loading {
		w.printf("  %s\n", r.muted.Sprintf("( %s )", busy))
		return
	}
	w.printf("  %s\n", r.active.Sprintf("[ %s ]", idle))
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(e, format, args...)
}
