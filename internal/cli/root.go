// Package cli implements the tempo command line.
package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-tempo/internal/config"
)

type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1
)

const defaultConfigPath = "tempo.toml"

func Run() ExitCode {
	rootCmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}

	return exitCodeSuccess
}

// NewRootCmd builds the tempo command tree reading from in and writing to out and errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tempo",
		Short:        "Declare and query the iris classifier pipeline.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.Wrap(cmd.Help(), "unable to show help")
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "set debug logging level")
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "path of the TOML configuration file")
	rootCmd.PersistentFlags().StringP("artifacts", "a", "", "artifacts folder, overrides the configuration file")

	rootCmd.AddCommand(
		NewDescribeCmd().Command(),
		NewGraphCmd().Command(),
		NewPredictCmd().Command(),
	)

	return rootCmd
}

// settings is the configuration shared by every command once flags are applied.
type settings struct {
	cfg *config.Config
	log *slog.Logger
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get verbose flag")
	}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config flag")
	}

	artifacts, err := flags.GetString("artifacts")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get artifacts flag")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if artifacts != "" {
		cfg.ArtifactsFolder = artifacts
	}

	return &settings{
		cfg: cfg,
		log: newLogger(cmd.ErrOrStderr(), verbose || cfg.Log.Verbose, cfg.Log.NoColor),
	}, nil
}

func newLogger(w io.Writer, verbose, noColor bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
}
