package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"varsler/feeds"
	"varsler/models"
	"varsler/pipeline"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run one ingestion cycle and print the new items",
		Description: `Fetches all configured feed sources once, classifies and stores new
items, and prints each newly added item as a JSON object on a single line.
Use a tool like jq to process the output.

Prints all other log messages to stderr.`,
		Flags: []cli.Flag{
			configFlag(),
			databaseFlag(),
			geminiKeyFlag(),
		},
		Action: func(ctx *cli.Context) error {
			// Keep stdout clean for the item output
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer st.close()

			clf := buildClassifier(ctx, cfg)
			pipe := pipeline.New(cfg.Feeds.Sources, feeds.NewReader(), clf, st.items)

			added, err := pipe.Run(ctx.Context)
			if err != nil {
				return err
			}

			for _, item := range added {
				printStdout(&item)
			}

			return nil
		},
	}
}

func printStdout(item *models.NewsItem) {
	// Print as single JSON string on a single line
	itemJson, err := json.Marshal(item)
	if err == nil {
		fmt.Println(string(itemJson))
	}
}
