package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/otpdesk/internal/ui"
	"github.com/TheMichaelB/otpdesk/internal/workflow"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Inspect generated OTPs and eligible users",
}

var adminOTPsCmd = &cobra.Command{
	Use:   "otps",
	Short: "List generated OTPs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdmin(cmd, apiClient.Page.FetchOTPList, func(r *ui.Renderer, s workflow.State) (interface{}, error) {
			if jsonOutput {
				return map[string]interface{}{"otps": s.OTPs}, nil
			}
			return nil, r.OTPTable(stdout, s)
		})
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users eligible for OTP login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAdmin(cmd, apiClient.Page.FetchEligibleUsers, func(r *ui.Renderer, s workflow.State) (interface{}, error) {
			if jsonOutput {
				return map[string]interface{}{"users": s.Users}, nil
			}
			return nil, r.UserTable(stdout, s)
		})
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminOTPsCmd, adminUsersCmd)
}

func runAdmin(cmd *cobra.Command, fetch func(context.Context) error, show func(*ui.Renderer, workflow.State) (interface{}, error)) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	err := fetch(ctx)
	if err := showBanner(apiClient.Page.State().Message, err); err != nil {
		return err
	}

	out, err := show(ui.NewRenderer(colorOutput()), apiClient.Page.State())
	if err != nil {
		return err
	}
	if out != nil {
		printJSON(out)
	}
	return nil
}
