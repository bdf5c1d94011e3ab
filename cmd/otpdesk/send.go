package main

import (
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

var sendCmd = &cobra.Command{
	Use:     "send <token>",
	Short:   "Email an existing OTP to its user",
	Example: `  otpdesk send 123456`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page := apiClient.Page
	page.SetSendToken(args[0])

	err := page.SendOTP(ctx, workflow.FromSendField)
	if err := showBanner(page.State().Message, err); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success": true,
			"message": page.State().Message.Text,
		})
	}
	return nil
}
