// Package cli provides the cobra command tree for the recall binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
	"github.com/custodia-labs/recall-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationNoServices marks commands that run without bootstrapping services.
const annotationNoServices = "recall/no-services"

// Services bundles the driving ports the commands use.
type Services struct {
	Activity  driving.ActivityService
	Document  driving.DocumentService
	Project   driving.ProjectService
	Retrieval driving.RetrievalService
	Settings  driving.SettingsService
	Index     driving.IndexAdmin
	Scheduler driving.Scheduler

	// InboxDir is the resolved capture inbox watched by 'recall serve'.
	InboxDir string
}

// Bootstrap builds services for a data directory. The returned closer is
// called once the command finishes.
type Bootstrap func(ctx context.Context, dataDir string) (*Services, func() error, error)

var (
	activityService  driving.ActivityService
	documentService  driving.DocumentService
	projectService   driving.ProjectService
	retrievalService driving.RetrievalService
	settingsService  driving.SettingsService
	indexAdmin       driving.IndexAdmin
	scheduler        driving.Scheduler
	inboxDir         string

	bootstrap Bootstrap
	closer    func() error

	verbose bool
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Vectorize recorded activity and retrieve it as chat context",
	Long: `recall stores captured on-screen activity and project documents,
embeds the ones with enough text into a local vector index, and answers
similarity queries so a chat engine can ground its replies.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.recall)")
}

// SetServices injects the driving ports. Nil fields leave the commands
// that need them reporting "not configured".
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	activityService = s.Activity
	documentService = s.Document
	projectService = s.Project
	retrievalService = s.Retrieval
	settingsService = s.Settings
	indexAdmin = s.Index
	scheduler = s.Scheduler
	inboxDir = s.InboxDir
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command until it completes or an interrupt arrives.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := shutdown(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	svc, c, err := bootstrap(cmd.Context(), dataDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(svc)
	closer = c
	return nil
}

func shutdown() error {
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

	if closer == nil {
		return nil
	}
	c := closer
	closer = nil
	return c()
}

// commandContext returns the command's context, falling back to Background
// when the command is executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
