package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"varsler/alert"
	"varsler/feeds"
	"varsler/pipeline"
	"varsler/scheduler"
	"varsler/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the varsler API",
		Description: `Starts the varsler HTTP server and the ingestion scheduler.

Periodically fetches all configured feed sources, classifies new items and
stores them in the SQLite database. News listing, manual fetch, alert
dispatch and alert history are exposed over the HTTP API.`,
		Flags: []cli.Flag{
			configFlag(),
			databaseFlag(),
			geminiKeyFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				EnvVars: []string{"VARSLER_PORT"},
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "Password for the configured SMTP account",
				EnvVars: []string{"VARSLER_SMTP_PASSWORD"},
			},
		},
		Action: func(ctx *cli.Context) error {

			fmt.Println("Starting varsler...")

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if ctx.IsSet("port") {
				cfg.Server.Port = ctx.Int("port")
			}

			st, err := openStores(cfg)
			if err != nil {
				return err
			}
			defer st.close()

			clf := buildClassifier(ctx, cfg)
			pipe := pipeline.New(cfg.Feeds.Sources, feeds.NewReader(), clf, st.items)

			emailer, err := alert.NewSMTPEmailer(
				cfg.Email.Host,
				cfg.Email.Port,
				cfg.Email.Username,
				ctx.String("smtp-password"),
				cfg.Email.From,
			)
			if err != nil {
				return err
			}
			dispatcher := alert.NewDispatcher(st.items, st.alerts, emailer, cfg.Email.DefaultRecipient)

			sched := scheduler.New(cfg.Scheduler.Mode, func() {
				if _, err := pipe.Run(context.Background()); err != nil {
					log.WithFields(log.Fields{
						"error": err,
					}).Error("Scheduled ingestion cycle failed")
				}
			}, cfg.SchedulerInterval())

			app := server.Server(&server.ServerConfig{
				Items:      st.items,
				Alerts:     st.alerts,
				Pipeline:   pipe,
				Dispatcher: dispatcher,
			})

			sched.Start()

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)

			go func() {
				<-c
				fmt.Println("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.Error("Error shutting down server", err)
				}
			}()

			fmt.Println("Starting server...")
			if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
				sched.Stop()
				return err
			}

			sched.Stop()

			fmt.Println("Done!")
			return nil
		},
	}
}
