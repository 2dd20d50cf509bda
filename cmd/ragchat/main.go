package main

import (
	"errors"
	"fmt"
	"os"

	"ragchat/internal/api"
	"ragchat/internal/config"
	"ragchat/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is reported in the User-Agent header.
var version = "0.3.0"

const (
	exitFailure = 1
	exitUsage   = 2
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string

	// Effective configuration, loaded before any command runs.
	cfg *config.Config

	// Logger for command diagnostics on stderr.
	logger *zap.Logger
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error   { return &exitError{code: exitUsage, err: err} }
func failureErr(err error) error { return &exitError{code: exitFailure, err: err} }

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Chat with your documents and upload new ones",
	Long: `ragchat is a terminal client for a retrieval-augmented chat service.

It sends questions to {API_URL}/chat and files to {API_URL}/upload.

Run without arguments to start the interactive interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return usageErr(err)
		}
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive client
		return runInteractive()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Service base URL (overrides api.base_url)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageErr(err)
	})

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line and maps the result to an exit code.
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unknown commands and argument validation failures.
	return exitUsage
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		c.API.BaseURL = apiURL
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// setup initializes file logging and the stderr logger.
func setup(cmd *cobra.Command) error {
	if cfg != nil {
		logDir := cfg.Logging.Dir
		if err := logging.Initialize(logDir, cfg.Logging.Settings()); err != nil {
			return usageErr(fmt.Errorf("failed to initialize logging: %w", err))
		}
		logging.Boot("ragchat %s starting command %q (base_url=%s)", version, cmd.Name(), cfg.API.BaseURL)
	}

	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

func teardown() {
	if logger != nil {
		_ = logger.Sync()
	}
	logging.CloseAll()
}

// newClient builds the service client from the effective configuration.
func newClient() (*api.Client, error) {
	c, err := api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.GetTimeout(),
		UserAgent: "ragchat/" + version,
	})
	if err != nil {
		return nil, usageErr(err)
	}
	logger.Debug("client ready", zap.String("base_url", c.BaseURL()), zap.Duration("timeout", cfg.GetTimeout()))
	return c, nil
}
