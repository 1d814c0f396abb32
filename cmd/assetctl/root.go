package main

import (
	"log/slog"

	"github.com/JonMunkholm/assetrepo/internal/application"
	"github.com/JonMunkholm/assetrepo/internal/config"
	"github.com/JonMunkholm/assetrepo/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// cli carries the flags and the opened application shared by subcommands.
type cli struct {
	file     string
	logLevel string
	app      *application.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "assetctl",
		Short: "Query and edit the asset repository spreadsheet",
		Long: `assetctl works on the asset spreadsheet the server serves.

Assets are located by Mc Serial No, Host Name or IP Address. Writes go
through the same service as the HTTP API, so uniqueness checks and the
audit log (when DATABASE_URL is set) apply.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.file, "file", "f", "", "asset workbook (overrides ASSET_FILE)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		c.headersCmd(),
		c.searchCmd(),
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.exportPDFCmd(),
		c.checkCmd(),
	)
	return root
}

// open loads configuration and starts the application before any subcommand.
func (c *cli) open(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.file != "" {
		cfg.Store.Path = c.file
	}

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), c.logLevel, cfg.Logging.Format))

	c.app, err = application.Open(cmd.Context(), cfg)
	return err
}
