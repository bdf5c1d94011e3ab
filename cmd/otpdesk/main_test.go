package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/otpdesk/internal/client"
	"github.com/TheMichaelB/otpdesk/internal/models"
	"github.com/TheMichaelB/otpdesk/internal/services/otp"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
	"github.com/TheMichaelB/otpdesk/test/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// execute runs the CLI in-process with fresh flag state.
func execute(t *testing.T, clip *testutil.MockClipboard, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	stdout, stderr = &out, &errOut
	clientOptions = []client.Option{client.WithClock(workflow.NewManualClock())}
	if clip != nil {
		clientOptions = append(clientOptions, client.WithClipboard(clip))
	}
	t.Cleanup(func() {
		stdout, stderr = os.Stdout, os.Stderr
		clientOptions = nil
	})

	code := run(args)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		// Set on a slice flag appends the "[]" default as a value
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestRequestCommand(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()
	clip := testutil.NewMockClipboard()

	res := execute(t, clip, "request", "alice@example.com", "--send", "--copy", "--json", "--base-url", server.URL)
	require.Equal(t, 0, res.code, res.stderr)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))

	token := server.Token("alice@example.com")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, token, out["token"])
	assert.Equal(t, true, out["sent"])
	assert.Equal(t, true, out["copied"])
	assert.Equal(t, []string{token}, server.Sent())
	assert.Equal(t, token, clip.Last())
}

func TestRequestCommandText(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()

	res := execute(t, testutil.NewMockClipboard(), "request", "alice@example.com", "--base-url", server.URL)
	require.Equal(t, 0, res.code, res.stderr)

	assert.Contains(t, res.stdout, "OTP requested successfully for alice@example.com")
	assert.Contains(t, res.stdout, "Token:   "+server.Token("alice@example.com"))
	assert.Empty(t, server.Sent())
}

func TestRequestCommandEmptyEmail(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()

	res := execute(t, testutil.NewMockClipboard(), "request", "  ", "--base-url", server.URL)

	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, workflow.MsgEnterEmail)
	assert.Empty(t, server.Requests(otp.PathGenerate))

	res = execute(t, testutil.NewMockClipboard(), "request", "", "--json", "--base-url", server.URL)
	assert.Equal(t, 2, res.code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, models.ErrCodeValidation, out["code"])
	assert.Equal(t, workflow.MsgEnterEmail, out["message"])
}

func TestVerifyCommand(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()

	res := execute(t, testutil.NewMockClipboard(), "request", "bob@example.com", "--base-url", server.URL)
	require.Equal(t, 0, res.code, res.stderr)
	token := server.Token("bob@example.com")

	res = execute(t, testutil.NewMockClipboard(), "verify", "bob@example.com", "000000", "--base-url", server.URL)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, workflow.MsgVerifyFailed)
	assert.Equal(t, 1, strings.Count(res.stderr, "✗"), "error reported once")

	res = execute(t, testutil.NewMockClipboard(), "verify", "bob@example.com", token, "--base-url", server.URL)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, workflow.MsgVerified)
}

func TestSendCommand(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()

	res := execute(t, testutil.NewMockClipboard(), "send", "999999", "--json", "--base-url", server.URL)
	assert.Equal(t, 1, res.code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, models.ErrCodeRequestFailed, out["code"])
	assert.Equal(t, workflow.MsgSendFailed, out["message"])
}

func TestAdminCommands(t *testing.T) {
	server := testutil.NewTestServer()
	defer server.Close()

	res := execute(t, testutil.NewMockClipboard(), "admin", "users", "--base-url", server.URL)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "LAST LOGIN")
	assert.Contains(t, res.stdout, "Alice Admin")
	assert.NotContains(t, res.stdout, "\x1b[", "no colour codes off a terminal")

	server.FailWith(otp.PathOTPList, 500)
	res = execute(t, testutil.NewMockClipboard(), "admin", "otps", "--base-url", server.URL)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, workflow.MsgListOTPsFailed)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(testutil.NewTestHelpers(t).TempDir(), "nested", "otpdesk.yaml")

	res := execute(t, nil, "config", "init", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.FileExists(t, path)

	res = execute(t, nil, "config", "init", path)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "already exists")

	res = execute(t, nil, "config", "init", path, "--force")
	assert.Equal(t, 0, res.code, res.stderr)
}

func TestInvalidConfigFile(t *testing.T) {
	path := testutil.NewTestHelpers(t).CreateTempFile("otpdesk.yaml", "ui:\n  message_expiry: sometimes\n")

	res := execute(t, nil, "verify", "a@b.com", "123456", "--config", path)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "invalid message expiry mode")
}

func TestEnvFileFlag(t *testing.T) {
	helpers := testutil.NewTestHelpers(t)
	envFile := helpers.CreateTempFile("otpdesk.env", "OTPDESK_UI_CODE_MAX_LENGTH=4\n")

	// Registered so the value exported from the dotenv file is removed afterwards.
	t.Setenv("OTPDESK_UI_CODE_MAX_LENGTH", "")
	require.NoError(t, os.Unsetenv("OTPDESK_UI_CODE_MAX_LENGTH"))

	res := execute(t, nil, "config", "show", "--env-file", envFile)
	require.Equal(t, 0, res.code, res.stderr)

	var shown struct {
		UI struct {
			CodeMaxLength int `json:"code_max_length"`
		} `json:"ui"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &shown))
	assert.Equal(t, 4, shown.UI.CodeMaxLength)

	// A later run without the flag must not inherit a stale file list.
	res = execute(t, nil, "config", "show")
	assert.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stderr, "load env file")
}
