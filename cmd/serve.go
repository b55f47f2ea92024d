package cmd

import (
	"fmt"
	"time"

	"flow-vault/core/loader"
	"flow-vault/core/logger"
	"flow-vault/core/middleware/auth"
	"flow-vault/core/middleware/rayid"
	"flow-vault/core/models"
	"flow-vault/feature/doctor"
	"flow-vault/feature/doctor/checks"
	"flow-vault/feature/history"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only history API",
	Long:  `Starts the HTTP server exposing versions, diffs, audit records and doctor checks.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.close()

		if err := rt.cfg.Server.Validate(); err != nil {
			return err
		}
		logg := rt.logger
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(history.NewFeature(rt.store, rt.cfg.Server, logg))
		mgr.Register(doctor.NewFeature(doctor.NewService(rt.db, rt.storage, rt.cfg.Storage, rt.store,
			func(p models.Profile) (checks.VersionReader, error) { return rt.dial(p) }, logg)))

		// RayID must be first to trace everything.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				l.Error("Request error", append(fields, zap.Error(err))...)
				return err
			}
			l.Info("Request completed", fields...)
			return nil
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok", "version": Version})
		})

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Public: []string{"/health"}}))

		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			errCh <- app.Listen(":" + rt.cfg.Server.Port)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-cmd.Context().Done():
		}

		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
