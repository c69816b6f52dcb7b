package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/arclight-deploy/internal/service/deployer"
	"github.com/oshokin/arclight-deploy/internal/version"
)

var (
	// configPath to the settings YAML file; empty means discover or use defaults.
	configPath string
	// deployFlag runs the deployment; without it the help text is printed.
	deployFlag bool
	// dryRun reports changes without writing.
	dryRun bool
	// logLevel overrides the level from settings.
	logLevel string

	// rootCmd represents the base command for deploying the server jar.
	rootCmd = &cobra.Command{
		Use:          "arclight-deploy",
		Short:        "Minecraft server management script",
		Long:         "Deploy the newest server-core/arclight-*.jar to every MCSManager instance listed in global.json and point each instance startCommand at it.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !deployFlag {
				return cmd.Help()
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &deployer.Options{
				ConfigPath: configPath,
				LogLevel:   logLevel,
				DryRun:     dryRun,
				Output:     cmd.OutOrStdout(),
			}

			_, err := deployer.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the arclight-deploy CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().BoolVar(&deployFlag, "deploy", false, "deploy server configurations to MCSManager")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing anything")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (default: ./arclight-deploy.yaml or XDG config dir)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}
