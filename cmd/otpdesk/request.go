package main

import (
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

var requestCmd = &cobra.Command{
	Use:   "request <email>",
	Short: "Generate an OTP for an email address",
	Long: `Request asks the API to generate a one-time password for the given
email address and prints the generated token.

Use --send to email the token to the user straight away, and --copy to put
it on the clipboard.`,
	Example: `  otpdesk request user@example.com
  otpdesk request user@example.com --send
  otpdesk request user@example.com --copy --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRequest,
}

var (
	requestSend bool
	requestCopy bool
)

func init() {
	rootCmd.AddCommand(requestCmd)

	requestCmd.Flags().BoolVarP(&requestSend, "send", "s", false,
		"Email the generated OTP to the user")
	requestCmd.Flags().BoolVarP(&requestCopy, "copy", "c", false,
		"Copy the generated token to the clipboard")
}

func runRequest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page := apiClient.Page
	page.SetRequestEmail(args[0])

	err := page.RequestOTP(ctx)
	if err := showBanner(page.State().Message, err); err != nil {
		return err
	}

	// captured before a send resets it
	record := page.State().Record

	if !jsonOutput {
		printInfo("  Token:   %s", record.Token)
		printInfo("  ID:      %s", record.ID)
		printInfo("  Expires: %s", record.ExpiresAt)
	}

	copied := false
	if requestCopy {
		// success leaves the request banner in place, so only failures are printed
		if err := page.CopyToken(); err != nil {
			return showBanner(page.State().Message, err)
		}
		copied = true
		if !jsonOutput {
			printSuccess("Token copied to clipboard")
		}
	}

	sent := false
	if requestSend {
		err := page.SendOTP(ctx, workflow.FromRecord)
		if err := showBanner(page.State().Message, err); err != nil {
			return err
		}
		sent = true
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":    true,
			"email":      record.Email,
			"token":      record.Token,
			"id":         record.ID,
			"created_at": record.CreatedAt,
			"expires_at": record.ExpiresAt,
			"copied":     copied,
			"sent":       sent,
		})
	}

	return nil
}
