package doctor

import (
	"flow-vault/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for doctor checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the doctor routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/doctor")
	group.Get("/", h.HandleDoctor)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/archive", h.HandleArchiveCheck)
	group.Get("/profiles", h.HandleProfileCheck)
	group.Get("/platforms", h.HandlePlatformCheck)
}

// HandleDoctor runs every check.
// @Summary Run All Checks
// @Description Runs the schema, archive, profile and platform checks. Responds 503 when unhealthy.
// @Tags doctor
// @Produce json
// @Success 200 {object} Report
// @Failure 503 {object} Report
// @Router /doctor [get]
func (h *Handler) HandleDoctor(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Running doctor checks")

	report := h.service.RunAll(c.Context())
	if !report.Healthy {
		l.Warn("Doctor found problems", zap.Any("errors", report.Errors))
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

// HandleSchemaCheck checks the store schema.
// @Summary Check Schema
// @Description Checks that the store tables contain every model column.
// @Tags doctor
// @Produce json
// @Success 200 {object} checks.SchemaReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /doctor/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckSchema()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleArchiveCheck checks and optionally creates the archive bucket.
// @Summary Check Archive
// @Description Checks that the bundle bucket exists. Optionally creates it.
// @Tags doctor
// @Produce json
// @Param fix query boolean false "Create a missing bucket"
// @Success 200 {object} checks.ArchiveReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /doctor/archive [get]
func (h *Handler) HandleArchiveCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.Query("fix") == "true"

	report, err := h.service.CheckArchive(c.Context())
	if err != nil {
		l.Error("Archive check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if report.Status == "missing" && fix {
		l.Info("Creating missing archive bucket")
		if err := h.service.FixArchive(c.Context()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		report.Exists = true
		report.Status = "fixed"
	}
	return c.JSON(report)
}

// HandleProfileCheck checks profile configuration.
// @Summary Check Profiles
// @Description Checks that profiles exist and exactly one is the default.
// @Tags doctor
// @Produce json
// @Success 200 {object} checks.ProfileReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /doctor/profiles [get]
func (h *Handler) HandleProfileCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckProfiles(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Profile check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandlePlatformCheck contacts every profile's platform.
// @Summary Check Platforms
// @Description Reads the version tag of every profile's platform.
// @Tags doctor
// @Produce json
// @Success 200 {array} checks.PlatformReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /doctor/platforms [get]
func (h *Handler) HandlePlatformCheck(c *fiber.Ctx) error {
	reports, err := h.service.CheckPlatforms(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Platform check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reports)
}
