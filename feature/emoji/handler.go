package emoji

import (
	"emoji-sync/core/logger"
	"emoji-sync/core/syncer"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the emoji sync engine.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the emoji routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/emoji")
	group.Post("/sync", h.HandleSync)
	group.Get("/cache", h.HandleCacheInfo)
	group.Get("/cache/:namespace", h.HandleCacheRecords)
	group.Delete("/cache/:namespace", h.HandleCacheEvict)
	group.Get("/validate", h.HandleValidate)
}

// HandleSync runs a sync pass. The provider query parameter restricts the
// run to one namespace; force and dry_run map to the CLI flags.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	scope := c.Query("provider")
	force := c.QueryBool("force")
	dryRun := c.QueryBool("dry_run")

	l.Info("Sync requested",
		zap.String("provider", scope),
		zap.Bool("force", force),
		zap.Bool("dry_run", dryRun),
	)

	agg, err := h.service.Sync(c.Context(), scope, force, dryRun)
	if err != nil {
		l.Error("Sync failed to start", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	status := fiber.StatusOK
	if agg.Failed() {
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(syncResponse(agg))
}

// syncResult mirrors syncer.Result with the provider-level error rendered as
// a string for JSON clients.
type syncResult struct {
	syncer.Result
	FailedWith string `json:"failed_with,omitempty"`
}

func syncResponse(agg syncer.Aggregate) fiber.Map {
	results := make([]syncResult, 0, len(agg.Results))
	for _, r := range agg.Results {
		sr := syncResult{Result: r}
		if r.Err != nil {
			sr.FailedWith = r.Err.Error()
		}
		results = append(results, sr)
	}
	return fiber.Map{
		"results":    results,
		"collisions": agg.Collisions,
		"failed":     agg.Failed(),
		"has_errors": agg.HasErrors(),
	}
}

// HandleCacheInfo returns per-namespace cache statistics.
func (h *Handler) HandleCacheInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"namespaces": h.service.CacheInfo()})
}

// HandleCacheRecords returns the cached records for one namespace.
func (h *Handler) HandleCacheRecords(c *fiber.Ctx) error {
	ns := c.Params("namespace")
	records := h.service.Records(ns)
	if len(records) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no cached emojis for namespace " + ns,
		})
	}
	return c.JSON(fiber.Map{"namespace": ns, "records": records})
}

// HandleCacheEvict removes one namespace from the cache.
func (h *Handler) HandleCacheEvict(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	ns := c.Params("namespace")

	removed, err := h.service.Evict(ns)
	if err != nil {
		l.Error("Cache evict failed", zap.String("namespace", ns), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	l.Info("Evicted namespace", zap.String("namespace", ns), zap.Int("removed", removed))
	return c.JSON(fiber.Map{"namespace": ns, "removed": removed})
}

// HandleValidate reports missing environment variables and, with the test
// query parameter, live provider connectivity.
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	report := h.service.Validate(c.Context(), c.QueryBool("test"))

	status := fiber.StatusOK
	if !report.OK() {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(report)
}
