package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oxc-project/oxlint-packager/internal/logger"
	"github.com/oxc-project/oxlint-packager/internal/service/packager"
	"github.com/oxc-project/oxlint-packager/internal/version"
)

var (
	// configPath to the optional layout configuration YAML file.
	configPath string
	// packagesRoot overrides the npm packages directory.
	packagesRoot string
	// descriptionPath enables the release description.
	descriptionPath string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd generates the native npm packages of a release.
	rootCmd = &cobra.Command{
		Use:   "oxlint-packager",
		Short: "Generate per-platform npm packages for a release",
		Long: `Generates one npm package per supported platform from the compiled release binaries.

For every target triple the package directory is recreated from scratch, a scoped
package.json restricted to the target's os/cpu/libc is written and the binary is
copied in with executable permissions. The user-facing package.json is then pinned
to the release version and its optionalDependencies list exactly the generated
packages.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath:      configPath,
				PackagesRoot:    packagesRoot,
				DescriptionFile: descriptionPath,
				LogLevel:        logLevel,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the oxlint-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.ErrorKV(context.Background(), "Packaging failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default oxlint-packager.yaml when present)")
	rootCmd.Flags().StringVarP(&packagesRoot, "root", "r", "", "npm packages directory (default npm)")
	rootCmd.Flags().StringVarP(&descriptionPath, "description", "d", "", "write a YAML release description with binary checksums to this path")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn, error")
}
