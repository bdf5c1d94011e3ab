package main

import (
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <email> <code>",
	Short: "Verify an OTP code for an email address",
	Long: `Verify checks a one-time password against the API. The command exits
non-zero when the code is rejected.`,
	Example: `  otpdesk verify user@example.com 123456`,
	Args:    cobra.ExactArgs(2),
	RunE:    runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page := apiClient.Page
	page.SetVerifyEmail(args[0])
	page.SetVerifyCode(args[1])

	err := page.VerifyOTP(ctx)
	if err := showBanner(page.State().Message, err); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"email":   args[0],
			"message": page.State().Message.Text,
		})
	}
	return nil
}
