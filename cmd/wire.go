package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"varsler/classifier"
	"varsler/config"
	"varsler/db"
	"varsler/store"
)

// stores holds the selected item/alert store pair and its cleanup.
type stores struct {
	items  store.ItemStore
	alerts store.AlertStore
	close  func()
}

// openStores selects the store implementation from the database config:
// "sqlite" opens (and migrates) the durable store, "memory" builds the
// ephemeral one.
func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("Using the ephemeral in-memory store, items will not survive a restart")
		return &stores{
			items:  store.NewMemoryItems(),
			alerts: store.NewMemoryAlerts(),
			close:  func() {},
		}, nil
	case "sqlite":
		if err := db.Migrate(cfg.Database.Path); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		items, err := db.NewItems(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		alerts, err := db.NewAlerts(cfg.Database.Path)
		if err != nil {
			items.Close()
			return nil, err
		}
		return &stores{
			items:  items,
			alerts: alerts,
			close: func() {
				alerts.Close()
				items.Close()
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
}

// loadConfig reads the TOML config and applies command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet("database") {
		cfg.Database.Path = ctx.String("database")
	}
	return cfg, nil
}

// buildClassifier composes the remote Gemini tier, when an API key is
// configured, with the keyword fallback.
func buildClassifier(ctx *cli.Context, cfg *config.Config) *classifier.Classifier {
	var remote classifier.Strategy
	if apiKey := ctx.String("gemini-api-key"); apiKey != "" {
		gemini, err := classifier.NewGemini(ctx.Context, apiKey, cfg.Classifier.Model, cfg.Classifier.Labels)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Warn("Could not create Gemini client, classification will use keywords only")
		} else {
			remote = gemini
		}
	} else {
		log.Info("No Gemini API key configured, classification will use keywords only")
	}

	return classifier.New(remote, classifier.NewKeyword(cfg.Classifier.Keywords), cfg.ClassifierTimeout())
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "varsler.toml",
		Usage:   "Configuration file location",
		EnvVars: []string{"VARSLER_CONFIG"},
	}
}

func databaseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Usage:   "SQLite database file location",
		EnvVars: []string{"VARSLER_DATABASE"},
	}
}

func geminiKeyFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "gemini-api-key",
		Usage:   "API key for the remote Gemini classifier",
		EnvVars: []string{"VARSLER_GEMINI_API_KEY"},
	}
}
