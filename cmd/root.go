package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "varsler",
		Usage: "A news ingestion and email alerting service",
		Description: `Varsler periodically pulls items from configured RSS/Atom feeds,
		deduplicates and classifies them, and persists new items to an
		SQLite database. Operators can trigger email alerts for specific
		items over the HTTP API; every dispatch attempt is recorded with
		its delivery outcome.

		Flags can generally be set via environment variables, e.g.:

		--config => VARSLER_CONFIG=varsler.toml
		--database => VARSLER_DATABASE=varsler.db
		`,
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			migrateCmd(),
			rollbackCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
