package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorOutput reports whether tables and pages written to stdout may carry
// colour codes.
func colorOutput() bool {
	return cfg.UI.Color && !noColor && isTerminal(stdout)
}

func printSuccess(format string, args ...interface{}) {
	successColor.Fprintf(stdout, "✓ "+format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	errorColor.Fprintf(stderr, "✗ "+format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	infoColor.Fprintf(stdout, format+"\n", args...)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		printError("encode json: %v", err)
		return
	}
	fmt.Fprintln(stdout, string(data))
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// showBanner prints the page's current message and returns err marked as
// reported when the banner already describes it.
func showBanner(m workflow.Message, err error) error {
	if !jsonOutput && m.Visible() {
		if m.Kind == workflow.MessageSuccess {
			printSuccess("%s", m.Text)
		} else {
			printError("%s", m.Text)
		}
	}

	if err == nil {
		return nil
	}
	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": false,
			"code":    errorCode(err),
			"message": m.Text,
			"error":   err.Error(),
		})
	}
	return &reportedError{err: err}
}
