package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/dash-build/internal/config"
	"github.com/oshokin/dash-build/internal/logger"
	"github.com/oshokin/dash-build/internal/service/common"
	"github.com/oshokin/dash-build/internal/service/pipeline"
	"github.com/oshokin/dash-build/internal/version"
)

var errUnknownLogLevel = errors.New("unknown log level")

// flags holds the values of the persistent flags.
type flags struct {
	configPath  string
	projectRoot string
	logLevel    string
}

// NewRootCommand builds the dash-build command tree.
func NewRootCommand() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:     "dash-build",
		Short:   "Build the dash-renderer assets",
		Version: version.Short(),
		Long: `Copies the JavaScript dependency bundles out of node_modules, runs the
package manager and the bundler, renders the version module from its template
and writes an MD5 digest of every bundle.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(f.logLevel)
			if !ok {
				return fmt.Errorf("%q: %w", f.logLevel, errUnknownLogLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}

	rootCmd.PersistentFlags().
		StringVarP(&f.configPath, "config", "c", config.DefaultConfigFilename, "path to build settings file")
	rootCmd.PersistentFlags().
		StringVarP(&f.projectRoot, "root", "r", "", "project root holding package.json (overrides settings)")
	rootCmd.PersistentFlags().
		StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newOperationCommand(f, pipeline.OperationClean, "Remove the deps folder and node_modules", nil),
		newOperationCommand(f, pipeline.OperationInstall, "Install dependencies with `npm ci`", []string{"npm"}),
		newOperationCommand(f, pipeline.OperationWatch, "Build the renderer once in development mode", nil),
		newOperationCommand(f, pipeline.OperationBundles, "Copy dependency bundles and run the bundler", nil),
		newOperationCommand(f, pipeline.OperationDigest, "Compute the hash digest of the bundles", nil),
		newOperationCommand(f, pipeline.OperationBuild, "Run clean, install, bundles and digest in sequence", nil),
	)

	version.AttachCobraVersionCommand(rootCmd)

	return rootCmd
}

// newOperationCommand wraps a pipeline operation; bundles and build accept an optional mode.
func newOperationCommand(f *flags, op pipeline.Operation, short string, aliases []string) *cobra.Command {
	command := &cobra.Command{
		Use:     string(op),
		Short:   short,
		Aliases: aliases,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			ctx = logger.ToContext(ctx, logger.New(nil))

			options := &pipeline.Options{
				ConfigPath:  f.configPath,
				ProjectRoot: f.projectRoot,
			}

			if len(args) > 0 {
				options.Mode = args[0]
			}

			return pipeline.Run(ctx, options, op)
		},
	}

	if op == pipeline.OperationBuild || op == pipeline.OperationBundles {
		command.Use = string(op) + " [" + config.ModeLocal + "]"
		command.Args = cobra.MaximumNArgs(1)
		command.ValidArgs = []string{config.ModeLocal}
	}

	return command
}

// Execute runs the dash-build CLI and exits with the failing tool's status on error.
func Execute() {
	ctx := context.Background()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.ErrorKV(ctx, "Build step failed", append([]any{"error", err}, common.ErrorFields(err)...)...)
		os.Exit(common.ExitCode(err))
	}
}
