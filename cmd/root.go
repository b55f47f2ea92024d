package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flow-vault/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the tool version stamped on every Version. Set with -ldflags.
var Version = "dev"

// configPath is the directory holding the .env file.
var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "flow-vault",
	Short: "Versioned backup, restore and sync for workflow automation platforms",
	Long: `flow-vault captures workflows, credentials and tags from a remote automation
platform into immutable versions, restores them to any compatible instance and keeps
a permanent audit of every run.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code derived from a run status.
type ExitError struct {
	Code   int
	Status string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("run finished with status %s", e.Status)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exit *ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}

	// Console format with ISO8601 timestamps matches what a CLI user expects.
	cfg := &logger.Config{
		Level:  "debug",
		Format: "console",
	}
	l, logErr := logger.New(cfg)
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Println(err)
	}
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing the .env file")
}
