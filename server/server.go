package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"varsler/alert"
	"varsler/models"
	"varsler/pipeline"
	"varsler/store"
)

type ServerConfig struct {

	// The item store backing the news listing
	Items store.ItemStore

	// The alert history store
	Alerts store.AlertStore

	// Pipeline used by the manual fetch trigger
	Pipeline *pipeline.Pipeline

	// Dispatcher used by the alert send endpoint
	Dispatcher *alert.Dispatcher
}

// Returns a fiber.App instance to be used as the HTTP server for varsler
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Paginated news listing, newest first
	app.Get("/api/news", func(c *fiber.Ctx) error {
		limit, offset := pagination(c)

		items, err := config.Items.List(c.Context(), limit, offset)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error listing news items")
			return c.Status(500).SendString("Error listing news items")
		}

		return c.JSON(items)
	})

	// Manual fetch trigger, runs one ingestion cycle synchronously
	app.Post("/api/news/fetch", func(c *fiber.Ctx) error {
		added, err := config.Pipeline.Run(c.Context())
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Manual ingestion cycle failed")
			return c.Status(500).SendString("Ingestion cycle failed")
		}

		return c.JSON(models.FetchResponse{
			NewCount: len(added),
			Items: lo.Map(added, func(item models.NewsItem, _ int) string {
				return item.Id
			}),
		})
	})

	// Alert history, newest first
	app.Get("/api/alerts", func(c *fiber.Ctx) error {
		limit, offset := pagination(c)

		records, err := config.Alerts.List(c.Context(), limit, offset)
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error listing alert history")
			return c.Status(500).SendString("Error listing alert history")
		}

		return c.JSON(records)
	})

	// Dispatch an alert for one news item
	app.Post("/api/alerts/send", func(c *fiber.Ctx) error {
		var req models.SendAlertRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).SendString("Invalid request body")
		}
		if req.NewsId == "" {
			return c.Status(400).SendString("news_id is required")
		}

		record, err := config.Dispatcher.Dispatch(c.Context(), req.NewsId, req.To)
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(404).SendString("News item not found")
		}
		if err != nil {
			log.WithFields(log.Fields{
				"newsId": req.NewsId,
				"error":  err,
			}).Error("Error dispatching alert")
			return c.Status(500).SendString("Error dispatching alert")
		}

		return c.JSON(record)
	})

	return app
}

// pagination parses limit/offset query parameters the same way for every
// listing endpoint; invalid values fall back to the defaults.
func pagination(c *fiber.Ctx) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(store.DefaultLimit)))
	if err != nil {
		limit = store.DefaultLimit
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		offset = 0
	}
	return store.ClampLimit(limit), store.ClampOffset(offset)
}
