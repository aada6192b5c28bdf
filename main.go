// Package main is the entry point for the repo-mirror CLI application.
// repo-mirror mirrors branches and tags from a source Git repository to a
// destination Git repository, refusing to overwrite destination-only commits.
package main

import (
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"

	"github.com/MyCarrier-DevOps/repo-mirror/cmd"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/adapters/gitcli"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/adapters/gogit"
	logadapter "github.com/MyCarrier-DevOps/repo-mirror/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/adapters/report"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/repo-mirror/internal/usecases"
)

func main() {
	// Create a single shared logger instance for the application
	zapLog := logger.NewZapLoggerFromConfig()
	adapter := logadapter.NewZapAdapter(zapLog)

	// Wire up production dependencies
	deps := &cmd.Dependencies{
		LoggerFactory: func() cmd.Logger {
			return adapter
		},

		ConfigLoader: func() (*cmd.AppConfig, error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				SourceRepo:   cfg.SourceRepo,
				DestRepo:     cfg.DestRepo,
				SourceBranch: cfg.SourceBranch,
				DestBranch:   cfg.DestBranch,
				AllBranches:  cfg.AllBranches,
				SyncTags:     cfg.SyncTags,
				MainFallback: cfg.MainFallback,
				SourceToken:  cfg.SourceToken,
				DestToken:    cfg.DestToken,
				LogLevel:     cfg.LogLevel,
				LogAppName:   cfg.LogAppName,
			}, nil
		},

		SyncerFactory: func(_ cmd.Logger) domain.Syncer {
			transport := gitcli.NewRunner(adapter)
			storeFactory := func(path string) (domain.RefStore, error) {
				return gogit.NewStore(path, adapter)
			}
			return usecases.NewMirrorSyncer(transport, storeFactory, adapter)
		},

		ReportWriterFactory: func() domain.ReportWriter {
			return report.NewWriter()
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}
