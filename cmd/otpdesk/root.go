package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/otpdesk/internal/client"
	"github.com/TheMichaelB/otpdesk/internal/config"
	"github.com/TheMichaelB/otpdesk/internal/events"
	"github.com/TheMichaelB/otpdesk/internal/models"
)

// Command annotations controlling how much of the stack setup builds.
const (
	annotationSetup = "otpdesk/setup"
	setupNone       = "none"
	setupConfig     = "config"
)

var (
	cfgFile    string
	envFiles   []string
	baseURL    string
	logLevel   string
	jsonOutput bool
	noColor    bool

	cfg       *config.Config
	logger    *events.Logger
	apiClient *client.Client

	// replaced in tests
	clientOptions []client.Option
)

var rootCmd = &cobra.Command{
	Use:   "otpdesk",
	Short: "Request, send and verify one-time passwords",
	Long: `otpdesk drives the OTP API from the terminal.

Request an OTP for an email address, email it to the user, verify a code,
or open an interactive shell with the full request/send/verify page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"Config file (default ./otpdesk.yaml, ~/.config/otpdesk/otpdesk.yaml)")
	pf.StringSliceVar(&envFiles, "env-file", nil,
		"Dotenv file(s) with OTPDESK_* variables (default ./.env if present)")
	pf.StringVar(&baseURL, "base-url", "",
		"OTP API base URL")
	pf.StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	pf.BoolVar(&jsonOutput, "json", false,
		"Output JSON")
	pf.BoolVar(&noColor, "no-color", false,
		"Disable coloured output")
}

// run executes the CLI and maps the outcome to an exit status.
func run(args []string) int {
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	if cerr := teardown(); err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}

	var shown *reportedError
	if !errors.As(err, &shown) {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"success": false,
				"code":    errorCode(err),
				"error":   err.Error(),
			})
		} else {
			printError("%v", err)
		}
	}

	return exitCode(err)
}

func exitCode(err error) int {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return 2
	case errors.Is(err, models.ErrBusy):
		return 3
	default:
		return 1
	}
}

// errorCode returns the machine-readable code carried by err, if any.
func errorCode(err error) string {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Code
	}
	var reqErr *models.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Code
	}
	return ""
}

func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}

	mode := cmd.Annotations[annotationSetup]
	if mode == setupNone {
		return nil
	}

	loader := config.NewLoader(cfgFile).WithEnvFiles(envFiles...)
	v := loader.Viper()
	pf := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("api.base_url", pf.Lookup("base-url")); err != nil {
		return fmt.Errorf("bind flag: %w", err)
	}
	if err := v.BindPFlag("log.level", pf.Lookup("log-level")); err != nil {
		return fmt.Errorf("bind flag: %w", err)
	}

	var err error
	cfg, err = loader.Load()
	if err != nil {
		return err
	}
	if noColor {
		cfg.UI.Color = false
		cfg.Log.Color = false
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	logger, err = events.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	events.SetDefault(logger)

	logger.WithFields(map[string]interface{}{
		"config_file": loader.ConfigFile(),
		"base_url":    cfg.API.BaseURL,
	}).Debug("Configuration loaded")

	if mode == setupConfig {
		return nil
	}

	apiClient, err = client.New(cfg, logger, clientOptions...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func teardown() error {
	if apiClient == nil {
		return nil
	}
	err := apiClient.Close()
	apiClient = nil
	return err
}

// commandContext is cancelled on interrupt.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}
