package integrity

import (
	"cloud-assets/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/container", h.HandleContainerCheck)
	group.Get("/mirror", h.HandleMirrorCheck)
	group.Get("/probe", h.HandleProbe)
}

// HandleIntegrityCheck runs the container and mirror checks. The probe writes to the
// bucket and only runs when asked with ?probe=true.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering integrity checks")

	ctx := c.Context()
	report := fiber.Map{}

	if err := h.service.CheckContainer(ctx); err != nil {
		report["container"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["container"] = fiber.Map{"status": "ok"}
	}

	if missing, err := h.service.CheckMirror(ctx); err != nil {
		report["mirror"] = fiber.Map{"status": "error", "error": err.Error()}
	} else {
		report["mirror"] = fiber.Map{"status": "ok", "missing": missing}
	}

	if c.QueryBool("probe") {
		report["probe"] = h.service.RunProbe(ctx)
	}

	return c.JSON(report)
}

// HandleContainerCheck checks the container is reachable.
func (h *Handler) HandleContainerCheck(c *fiber.Ctx) error {
	if err := h.service.CheckContainer(c.Context()); err != nil {
		logger.WithRayID(h.service.logger, c).Error("Container check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleMirrorCheck checks and optionally uploads local files missing from the bucket.
func (h *Handler) HandleMirrorCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	missing, err := h.service.CheckMirror(c.Context())
	if err != nil {
		l.Error("Mirror check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Files missing from bucket", zap.Strings("missing", missing))

		if fix {
			l.Info("Uploading missing files")
			if err := h.service.FixMirror(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to upload missing files",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleProbe runs the round trip probe.
func (h *Handler) HandleProbe(c *fiber.Ctx) error {
	report := h.service.RunProbe(c.Context())
	if !report.Passed {
		logger.WithRayID(h.service.logger, c).Warn("Probe failed", zap.Any("steps", report.Steps))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}
