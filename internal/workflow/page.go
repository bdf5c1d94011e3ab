package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// API is the remote OTP service as seen by the page.
type API interface {
	Generate(ctx context.Context, email string) (models.OTPRecord, error)
	SendEmail(ctx context.Context, token string) error
	Verify(ctx context.Context, email, code string) error
	ListOTPs(ctx context.Context) ([]models.OTPEntry, error)
	ListEligibleUsers(ctx context.Context) ([]models.EligibleUser, error)
}

// Clipboard receives copied tokens.
type Clipboard interface {
	WriteAll(text string) error
}

// Options configures a Page.
type Options struct {
	MessageTTL        time.Duration
	CopyFeedbackTTL   time.Duration
	CodeMaxLength     int
	IndependentExpiry bool
	EnableViewTab     bool
	Clock             Clock
	Clipboard         Clipboard
}

// OptionsFromConfig maps the ui config section onto page options.
func OptionsFromConfig(cfg *config.UIConfig) Options {
	return Options{
		MessageTTL:        cfg.MessageTTL,
		CopyFeedbackTTL:   cfg.CopyFeedbackTTL,
		CodeMaxLength:     cfg.CodeMaxLength,
		IndependentExpiry: cfg.MessageExpiry == config.ExpiryIndependent,
		EnableViewTab:     cfg.EnableViewTab,
	}
}

// Page runs the OTP workflows against an API and keeps the page state.
// Methods are safe for concurrent use; different actions may be in flight
// at the same time, the same action may not.
type Page struct {
	mu        sync.Mutex
	state     State
	observers []func(State)

	// held while observers run so they see snapshots in commit order
	notifyMu sync.Mutex

	seq       atomic.Uint64
	api       API
	clock     Clock
	clipboard Clipboard
	opts      Options
	logger    *events.Logger
}

// NewPage creates a page in its initial state.
func NewPage(api API, opts Options, logger *events.Logger) *Page {
	if opts.MessageTTL <= 0 {
		opts.MessageTTL = 5 * time.Second
	}
	if opts.CopyFeedbackTTL <= 0 {
		opts.CopyFeedbackTTL = 2 * time.Second
	}
	if opts.CodeMaxLength <= 0 {
		opts.CodeMaxLength = 6
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}

	return &Page{
		state:     NewState(opts.CodeMaxLength, opts.EnableViewTab),
		api:       api,
		clock:     opts.Clock,
		clipboard: opts.Clipboard,
		opts:      opts,
		logger:    logger.WithField("component", "workflow"),
	}
}

// State returns a snapshot of the page.
func (p *Page) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Observe registers fn to receive a snapshot after every change, in commit
// order. fn must not call back into the Page.
func (p *Page) Observe(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// SelectTab activates tab. Form values are kept.
func (p *Page) SelectTab(tab Tab) error {
	p.mu.Lock()
	if !p.state.TabEnabled(tab) {
		p.mu.Unlock()
		if _, err := ParseTab(string(tab)); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", models.ErrTabDisabled, tab)
	}
	p.commitLocked(SelectTab{Tab: tab})
	return nil
}

// ToggleMenu opens or closes the tab menu.
func (p *Page) ToggleMenu() {
	p.dispatch(ToggleMenu{})
}

// SetRequestEmail sets the Request tab's email input.
func (p *Page) SetRequestEmail(v string) { p.dispatch(SetField{Field: FieldRequestEmail, Value: v}) }

// SetSendToken sets the Send tab's code input.
func (p *Page) SetSendToken(v string) { p.dispatch(SetField{Field: FieldSendToken, Value: v}) }

// SetVerifyEmail sets the Verify tab's email input.
func (p *Page) SetVerifyEmail(v string) { p.dispatch(SetField{Field: FieldVerifyEmail, Value: v}) }

// SetVerifyCode sets the Verify tab's code input.
func (p *Page) SetVerifyCode(v string) { p.dispatch(SetField{Field: FieldVerifyCode, Value: v}) }

// RequestOTP generates an OTP for the Request tab's email.
func (p *Page) RequestOTP(ctx context.Context) error {
	ctx, logger := p.actionContext(ctx, OpRequest)

	p.mu.Lock()
	if p.state.Loading.Request {
		p.mu.Unlock()
		return models.ErrBusy
	}
	email := strings.TrimSpace(p.state.Fields.RequestEmail)
	if email == "" {
		p.mu.Unlock()
		return p.invalid(logger, MsgEnterEmail, "email")
	}
	p.commitLocked(Begin{Op: OpRequest})

	record, err := p.api.Generate(ctx, email)
	if err != nil {
		return p.fail(logger, OpRequest, MsgRequestFailed, err)
	}

	logger.WithField("otp_id", record.ID).Info("OTP requested")
	p.succeed(OpRequest, fmt.Sprintf(msgRequestedPattern, email), RequestSucceeded{Record: record})
	return nil
}

// SendOTP emails an OTP. FromRecord sends the token captured by RequestOTP;
// FromSendField sends the Send tab's own input.
func (p *Page) SendOTP(ctx context.Context, source SendSource) error {
	ctx, logger := p.actionContext(ctx, OpSend)
	logger = logger.WithField("source", source.String())

	p.mu.Lock()
	if p.state.Loading.Send {
		p.mu.Unlock()
		return models.ErrBusy
	}
	token := p.state.Record.Token
	if source == FromSendField {
		token = strings.TrimSpace(p.state.Fields.SendToken)
	}
	if token == "" {
		p.mu.Unlock()
		return p.invalid(logger, MsgEnterCode, "token")
	}
	p.commitLocked(Begin{Op: OpSend})

	if err := p.api.SendEmail(ctx, token); err != nil {
		return p.fail(logger, OpSend, MsgSendFailed, err)
	}

	logger.Info("OTP sent")
	p.succeed(OpSend, MsgSent, SendSucceeded{Token: token, Source: source})
	return nil
}

// VerifyOTP checks the Verify tab's email and code. On failure the inputs are kept.
func (p *Page) VerifyOTP(ctx context.Context) error {
	ctx, logger := p.actionContext(ctx, OpVerify)

	p.mu.Lock()
	if p.state.Loading.Verify {
		p.mu.Unlock()
		return models.ErrBusy
	}
	email := strings.TrimSpace(p.state.Fields.VerifyEmail)
	code := strings.TrimSpace(p.state.Fields.VerifyCode)
	if email == "" || code == "" {
		p.mu.Unlock()
		var missing []string
		if email == "" {
			missing = append(missing, "email")
		}
		if code == "" {
			missing = append(missing, "code")
		}
		return p.invalid(logger, MsgEnterEmailCode, missing...)
	}
	p.commitLocked(Begin{Op: OpVerify})

	if err := p.api.Verify(ctx, email, code); err != nil {
		return p.fail(logger, OpVerify, MsgVerifyFailed, err)
	}

	logger.WithField("email", email).Info("OTP verified")
	p.succeed(OpVerify, MsgVerified, VerifySucceeded{})
	return nil
}

// FetchOTPList loads the admin OTP table.
func (p *Page) FetchOTPList(ctx context.Context) error {
	ctx, logger := p.actionContext(ctx, OpListOTPs)
	if err := p.beginOnly(OpListOTPs); err != nil {
		return err
	}

	otps, err := p.api.ListOTPs(ctx)
	if err != nil {
		return p.fail(logger, OpListOTPs, MsgListOTPsFailed, err)
	}
	if otps == nil {
		otps = []models.OTPEntry{}
	}

	p.succeed(OpListOTPs, MsgOTPsRefreshed, OTPsLoaded{OTPs: otps})
	return nil
}

// FetchEligibleUsers loads the admin users table.
func (p *Page) FetchEligibleUsers(ctx context.Context) error {
	ctx, logger := p.actionContext(ctx, OpListUsers)
	if err := p.beginOnly(OpListUsers); err != nil {
		return err
	}

	users, err := p.api.ListEligibleUsers(ctx)
	if err != nil {
		return p.fail(logger, OpListUsers, MsgListUsersFailed, err)
	}
	if users == nil {
		users = []models.EligibleUser{}
	}

	p.succeed(OpListUsers, MsgUsersRefreshed, UsersLoaded{Users: users})
	return nil
}

// CopyToken copies the captured token to the clipboard and shows feedback
// for the configured duration.
func (p *Page) CopyToken() error {
	token := p.State().Record.Token
	if token == "" {
		return models.ErrEmptyToken
	}

	var err error
	if p.clipboard == nil {
		err = errors.New("no clipboard available")
	} else {
		err = p.clipboard.WriteAll(token)
	}
	if err != nil {
		p.logger.WithError(err).Warn("Copy to clipboard failed")
		p.show(MessageError, MsgCopyFailed)
		return &models.RequestError{Action: "copy_token", Code: models.ErrCodeClipboard, Message: MsgCopyFailed, Err: err}
	}

	seq := p.seq.Add(1)
	p.dispatch(CopySucceeded{Seq: seq})
	p.clock.AfterFunc(p.opts.CopyFeedbackTTL, func() {
		p.dispatch(CopyFeedbackExpired{Seq: seq})
	})
	return nil
}

func (p *Page) actionContext(ctx context.Context, op Op) (context.Context, *events.Logger) {
	id := events.GetRequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	ctx = events.WithLogger(ctx, p.logger)
	ctx = events.WithRequestID(ctx, id)
	ctx = events.WithAction(ctx, op.String())
	return ctx, events.FromContext(ctx)
}

func (p *Page) beginOnly(op Op) error {
	p.mu.Lock()
	if p.state.Loading.Get(op) {
		p.mu.Unlock()
		return models.ErrBusy
	}
	p.commitLocked(Begin{Op: op})
	return nil
}

func (p *Page) invalid(logger *events.Logger, text string, fields ...string) error {
	logger.WithField("fields", strings.Join(fields, ",")).Debug("Validation failed")
	p.show(MessageError, text)
	return &models.ValidationError{Code: models.ErrCodeValidation, Fields: fields, Message: text}
}

func (p *Page) fail(logger *events.Logger, op Op, failedMsg string, err error) error {
	reqErr := models.NewRequestError(op.String(), failedMsg, MsgNetworkError, err)
	logger.WithError(err).WithField("code", reqErr.Code).Warn("Action failed")
	p.show(MessageError, reqErr.Message, End{Op: op})
	return reqErr
}

func (p *Page) succeed(op Op, text string, result Action) {
	p.show(MessageSuccess, text, result, End{Op: op})
}

// show applies extra together with a new banner and schedules its expiry.
func (p *Page) show(kind MessageKind, text string, extra ...Action) {
	seq := p.seq.Add(1)
	actions := append(extra, ShowMessage{Kind: kind, Text: text, Seq: seq})
	p.dispatch(actions...)

	force := p.opts.IndependentExpiry
	p.clock.AfterFunc(p.opts.MessageTTL, func() {
		p.dispatch(ExpireMessage{Seq: seq, Force: force})
	})
}

func (p *Page) dispatch(actions ...Action) {
	p.mu.Lock()
	p.commitLocked(actions...)
}

// commitLocked applies actions atomically and notifies observers. It must be
// called with p.mu held and releases it.
func (p *Page) commitLocked(actions ...Action) {
	for _, a := range actions {
		p.state = Reduce(p.state, a)
	}
	snapshot := p.state
	observers := p.observers

	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}
