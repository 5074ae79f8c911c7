package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/supporthub/supporthub-client/internal/api"
	"github.com/supporthub/supporthub-client/internal/config"
	"github.com/supporthub/supporthub-client/internal/observability"
	"github.com/supporthub/supporthub-client/internal/session"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	store   *session.Store
	gateway *api.Client
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "supporthub",
	Short: "SupportHub helpdesk client",
	Long: `Command-line client for the SupportHub helpdesk service.

Log in, create and track support tickets, assign and finalize them as an
administrator, and watch ticket lists update live as other users act.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		store = session.NewStore(cfg.Session.TokenPath, logger)
		gateway = api.NewClient(cfg.API, store, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("supporthub %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(ticketCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
