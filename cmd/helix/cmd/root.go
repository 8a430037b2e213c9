// Package cmd implements the commands of the helix CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	helix "github.com/Guliveer/twitch-helix-go"
	"github.com/Guliveer/twitch-helix-go/internal/config"
	"github.com/Guliveer/twitch-helix-go/internal/logger"
)

// Exit codes.
const (
	ExitCodeSuccess  = 0
	ExitCodeError    = 1
	ExitCodeNotFound = 2
	ExitCodeAuth     = 3
)

// errNotFound is returned by lookups that found nothing.
var errNotFound = errors.New("not found")

var (
	cfgFile  string
	envFile  string
	logLevel string
	noColor  bool
	asJSON   bool
	timeout  time.Duration
)

// app is built once the flags are parsed.
var app struct {
	client *helix.Client
	log    *logger.Logger
}

var rootCmd = &cobra.Command{
	Use:   "helix",
	Short: "Query the Twitch Helix API with application credentials",
	Long: `helix resolves Twitch users, live streams, clips and follow dates.

Credentials are read from the config file or from TWITCH_CLIENT_ID and
TWITCH_CLIENT_SECRET, which may also be placed in a .env file.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default helix.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (overrides HELIX_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall deadline for the command")

	rootCmd.AddCommand(authorizeCmd, userCmd, userIDCmd, streamCmd, clipCmd, followDateCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	colored := !noColor && term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == ""
	if cfg.Log.Colored != nil {
		colored = colored && *cfg.Log.Colored
	}

	log, err := logger.Setup(logger.Config{
		Level:     logger.ParseLevel(cfg.Log.Level),
		FileLevel: slog.LevelDebug,
		Colored:   colored,
		LogDir:    cfg.Log.Dir,
		Output:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	client, err := helix.New(cfg.Options())
	if err != nil {
		return err
	}
	log.Attach(client)

	app.client = client
	app.log = log
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitCodeSuccess
	}
	if !errors.Is(err, errNotFound) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, errNotFound):
		return ExitCodeNotFound
	case helix.IsUnauthorized(err):
		return ExitCodeAuth
	default:
		var authErr *helix.AuthError
		var cfgErr *helix.ConfigurationError
		if errors.As(err, &authErr) || errors.As(err, &cfgErr) {
			return ExitCodeAuth
		}
		return ExitCodeError
	}
}

// commandContext bounds a command by the --timeout flag.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}
