package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lab-grader/internal/config"
	"github.com/noah-isme/gema-lab-grader/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Uptime      string    `json:"uptime"`
	Labs        []string  `json:"labs"`
}

// HealthCheck reports liveness together with the labs this instance grades.
func HealthCheck(cfg config.Config, labs ...string) fiber.Handler {
	started := time.Now()
	if labs == nil {
		labs = []string{}
	}

	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Uptime:      time.Since(started).Round(time.Second).String(),
			Labs:        labs,
		}

		return utils.OK(c, payload, "service healthy", nil)
	}
}
