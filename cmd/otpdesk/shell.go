package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/otpdesk/internal/models"
	"github.com/TheMichaelB/otpdesk/internal/ui"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive OTP page",
	Long: `Shell shows the request/send/verify page and redraws it as actions
complete and messages expire. Type "help" for the available commands.

When input is not a terminal the commands run one after another and only
the messages are printed, which makes the shell scriptable.`,
	Example: `  otpdesk shell
  printf 'email user@example.com\nsubmit\n' | otpdesk shell`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `Commands:
  tab <request|send|verify|view|1-4>  switch tab
  menu                                toggle the tab menu
  email <address>                     set the email field of the active tab
  code <value>                        set the code field of the active tab
  submit                              run the active tab's action
  copy                                copy the requested token
  refresh [otps|users]                reload the admin tables
  show                                print the page
  help                                show this help
  quit                                leave the shell`

func runShell(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && isTerminal(stdout)
	renderer := ui.NewRenderer(interactive && colorOutput())

	return newShell(apiClient.Page, renderer, stdout, interactive).run(ctx, os.Stdin)
}

// shell is a line-oriented front end for a Page.
type shell struct {
	page        *workflow.Page
	renderer    *ui.Renderer
	out         *lockedWriter
	interactive bool

	// observer state, only touched from the observer
	lastSeq uint64

	wg sync.WaitGroup
}

func newShell(page *workflow.Page, renderer *ui.Renderer, out io.Writer, interactive bool) *shell {
	return &shell{
		page:        page,
		renderer:    renderer,
		out:         &lockedWriter{w: out},
		interactive: interactive,
	}
}

// run reads commands from in until quit, end of input or ctx is cancelled.
// Pending actions are waited for before it returns.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	if s.interactive {
		s.redraw(s.page.State())
	}
	s.page.Observe(s.observe)

	done := make(chan struct{})
	defer close(done)
	lines, scanErr := readLines(in, done)

	for {
		select {
		case <-ctx.Done():
			s.finish()
			return nil

		case line, ok := <-lines:
			if !ok {
				s.finish()
				return <-scanErr
			}
			quit, err := s.exec(ctx, line)
			if err != nil {
				s.out.printf("%s\n", err)
			}
			if quit {
				s.finish()
				return nil
			}
		}
	}
}

func (s *shell) finish() {
	if s.page.State().Loading.Any() {
		s.out.printf("Waiting for pending requests...\n")
	}
	s.wg.Wait()
}

// readLines scans in on its own goroutine so a blocked read never keeps the
// shell from noticing cancellation. The error channel receives the scan
// result once lines is closed.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

func (s *shell) observe(st workflow.State) {
	if s.interactive {
		s.redraw(st)
		return
	}

	if st.Message.Seq != s.lastSeq && st.Message.Visible() {
		_ = s.renderer.Banner(s.out, st.Message)
	}
	s.lastSeq = st.Message.Seq
}

func (s *shell) redraw(st workflow.State) {
	s.out.mu.Lock()
	defer s.out.mu.Unlock()

	fmt.Fprint(s.out.w, "\x1b[H\x1b[2J")
	_ = s.renderer.Render(s.out.w, st)
	fmt.Fprint(s.out.w, "\n(type \"help\" for commands)\notpdesk> ")
}

// exec runs one input line and reports whether the shell should exit.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
		return false, nil
	case "quit", "exit":
		return true, nil
	case "help", "?":
		s.out.printf("%s\n", shellHelp)
	case "show":
		st := s.page.State()
		s.out.mu.Lock()
		err := s.renderer.Render(s.out.w, st)
		s.out.mu.Unlock()
		return false, err
	case "menu":
		s.page.ToggleMenu()
	case "tab":
		return false, s.selectTab(arg)
	case "email":
		return false, s.setEmail(arg)
	case "code":
		return false, s.setCode(arg)
	case "submit":
		s.submit(ctx)
	case "copy":
		return false, s.copyToken()
	case "refresh":
		return false, s.refresh(ctx, arg)
	default:
		return false, fmt.Errorf("unknown command %q (type \"help\")", name)
	}
	return false, nil
}

func (s *shell) selectTab(arg string) error {
	tabs := s.page.State().Tabs()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(tabs) {
			return fmt.Errorf("tab number must be between 1 and %d", len(tabs))
		}
		return s.page.SelectTab(tabs[n-1])
	}

	tab, err := workflow.ParseTab(strings.ToLower(arg))
	if err != nil {
		return err
	}
	return s.page.SelectTab(tab)
}

func (s *shell) setEmail(v string) error {
	switch tab := s.page.State().ActiveTab; tab {
	case workflow.TabRequest:
		s.page.SetRequestEmail(v)
	case workflow.TabVerify:
		s.page.SetVerifyEmail(v)
	default:
		return fmt.Errorf("the %s tab has no email field", tab.Label())
	}
	return nil
}

func (s *shell) setCode(v string) error {
	switch tab := s.page.State().ActiveTab; tab {
	case workflow.TabSend:
		s.page.SetSendToken(v)
	case workflow.TabVerify:
		s.page.SetVerifyCode(v)
	default:
		return fmt.Errorf("the %s tab has no code field", tab.Label())
	}
	return nil
}

func (s *shell) submit(ctx context.Context) {
	st := s.page.State()
	switch st.ActiveTab {
	case workflow.TabRequest:
		if st.ShowSendPanel() {
			s.start(func() error { return s.page.SendOTP(ctx, workflow.FromRecord) })
		} else {
			s.start(func() error { return s.page.RequestOTP(ctx) })
		}
	case workflow.TabSend:
		s.start(func() error { return s.page.SendOTP(ctx, workflow.FromSendField) })
	case workflow.TabVerify:
		s.start(func() error { return s.page.VerifyOTP(ctx) })
	case workflow.TabView:
		s.start(func() error {
			if err := s.page.FetchOTPList(ctx); err != nil {
				return err
			}
			return s.page.FetchEligibleUsers(ctx)
		})
	}
}

func (s *shell) refresh(ctx context.Context, which string) error {
	switch which {
	case "", "otps":
		s.start(func() error { return s.page.FetchOTPList(ctx) })
	case "users":
		s.start(func() error { return s.page.FetchEligibleUsers(ctx) })
	default:
		return fmt.Errorf("refresh what? (otps or users)")
	}
	return nil
}

func (s *shell) copyToken() error {
	err := s.page.CopyToken()
	if errors.Is(err, models.ErrEmptyToken) {
		return errors.New("nothing to copy, request an OTP first")
	}
	// other failures are shown on the page
	return nil
}

// start runs an action in the background when interactive so the page can
// show its loading state, and inline otherwise.
func (s *shell) start(action func() error) {
	handle := func(err error) {
		if errors.Is(err, models.ErrBusy) {
			s.out.printf("Still working on the previous request\n")
		}
	}

	if !s.interactive {
		handle(action())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		handle(action())
	}()
}

// lockedWriter serialises writes from the input loop and page observers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *lockedWriter) printf(format string, args ...interface{}) {
	fmt.Fprintf(l, format, args...)
}
