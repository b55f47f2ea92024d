package history

import (
	"errors"
	"strings"
	"time"

	"flow-vault/core/errs"
	"flow-vault/core/logger"
	"flow-vault/core/models"
	"flow-vault/core/server"
	"flow-vault/core/versionstore"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for version history.
type Handler struct {
	service *Service
	cfg     server.Config
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, cfg server.Config) *Handler {
	return &Handler{service: service, cfg: cfg}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	versions := app.Group("/versions")
	versions.Get("/", h.HandleListVersions)
	versions.Get("/:id", h.HandleGetVersion)
	versions.Get("/:id/diff/:other", h.HandleDiff)

	app.Get("/audits", h.HandleListAudits)
}

// HandleListVersions lists Versions.
// @Summary List Versions
// @Description Lists Versions newest first, optionally filtered by profile, operation and status.
// @Tags history
// @Produce json
// @Param profile query string false "Profile id"
// @Param operation query string false "backup, restore, sync"
// @Param status query string false "Comma separated statuses"
// @Param since query string false "RFC3339 lower bound"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{} "Versions"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /versions [get]
func (h *Handler) HandleListVersions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	f := versionstore.VersionFilter{
		ProfileID: c.Query("profile"),
		Operation: models.OperationType(c.Query("operation")),
		Limit:     h.cfg.PageSize(c.QueryInt("limit")),
	}
	for _, st := range splitList(c.Query("status")) {
		f.Statuses = append(f.Statuses, models.VersionStatus(st))
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid since: " + err.Error()})
		}
		f.Since = t
	}

	versions, err := h.service.ListVersions(c.Context(), f)
	if err != nil {
		l.Error("Failed to list versions", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"versions": versions, "count": len(versions)})
}

// HandleGetVersion returns one Version.
// @Summary Get Version
// @Description Returns a Version with its object records in dispatch order.
// @Tags history
// @Produce json
// @Param id path string true "Version id"
// @Success 200 {object} models.Version
// @Failure 404 {object} map[string]string "Not Found"
// @Router /versions/{id} [get]
func (h *Handler) HandleGetVersion(c *fiber.Ctx) error {
	v, err := h.service.GetVersion(c.Context(), c.Params("id"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Failed to get version", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(v)
}

// HandleDiff compares two Versions.
// @Summary Diff Versions
// @Description Classifies the objects of :other against :id as added, modified or removed.
// @Tags history
// @Produce json
// @Param id path string true "Base version id"
// @Param other path string true "Current version id"
// @Success 200 {object} DiffReport
// @Failure 404 {object} map[string]string "Not Found"
// @Router /versions/{id}/diff/{other} [get]
func (h *Handler) HandleDiff(c *fiber.Ctx) error {
	report, err := h.service.Diff(c.Context(), c.Params("id"), c.Params("other"))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Failed to diff versions", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(report)
}

// HandleListAudits lists audit records.
// @Summary List Audits
// @Description Lists audit records newest first.
// @Tags history
// @Produce json
// @Param version query string false "Version id"
// @Param profile query string false "Profile id"
// @Param operation query string false "Operation"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{} "Audits"
// @Router /audits [get]
func (h *Handler) HandleListAudits(c *fiber.Ctx) error {
	audits, err := h.service.ListAudits(c.Context(), versionstore.AuditFilter{
		VersionID: c.Query("version"),
		ProfileID: c.Query("profile"),
		Operation: models.OperationType(c.Query("operation")),
		Limit:     h.cfg.PageSize(c.QueryInt("limit")),
	})
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list audits", zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"audits": audits, "count": len(audits)})
}

func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, errs.ErrValidation):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
