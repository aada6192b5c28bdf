// Package cmd provides the CLI commands for repo-mirror.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func() Logger

	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// SyncerFactory creates the Syncer that runs the mirror operation.
	SyncerFactory func(log Logger) domain.Syncer

	// ReportWriterFactory creates a ReportWriter for the sync summary.
	ReportWriterFactory func() domain.ReportWriter

	// Stdout is the writer for standard output (for the sync summary).
	Stdout io.Writer

	// Stderr is the writer for standard error (for warnings/errors).
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// SourceRepo is the source repository URL.
	SourceRepo string

	// DestRepo is the destination repository URL.
	DestRepo string

	// SourceBranch is the branch to mirror from the source.
	SourceBranch string

	// DestBranch is the branch name at the destination.
	DestBranch string

	// AllBranches enables all-branch mode.
	AllBranches bool

	// SyncTags is "true", a tag pattern, or empty.
	SyncTags string

	// MainFallback enables the main/master fallback.
	MainFallback bool

	// SourceToken is the access token for the source repository.
	SourceToken string

	// DestToken is the access token for the destination repository.
	DestToken string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// Command-line flags.
var (
	flagSourceRepo   string
	flagDestRepo     string
	flagSourceBranch string
	flagDestBranch   string
	flagAllBranches  bool
	flagSyncTags     string
	flagMainFallback bool
	flagWorkDir      string
	verbose          bool
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for repo-mirror.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repo-mirror",
		Short: "Mirror branches and tags from one Git repository to another",
		Long: `repo-mirror mirrors branches and tags from a source Git repository to a
destination Git repository, which may live on a different hosting provider
or behind a Gerrit review system.

Before every branch push the destination is checked for commits that exist
only there; a diverged destination branch aborts the run so that nothing is
silently overwritten. Gerrit destinations are pushed through the review
queue (refs/for/*) and detected automatically from the destination URL.

Examples:
  # Mirror the main branch
  repo-mirror --source-repo https://github.com/org/app --dest-repo https://git.example.com/app

  # Mirror every branch and all tags, deleting stale destination branches
  repo-mirror --source-repo <src> --dest-repo <dst> --all-branches --sync-tags true

  # Mirror release tags only
  repo-mirror --source-repo <src> --dest-repo <dst> --sync-tags '^v[0-9]+'`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, deps)
		},
	}

	// Define flags
	rootCmd.Flags().StringVar(&flagSourceRepo, "source-repo", "",
		"Source repository URL (HTTPS or SSH)")
	rootCmd.Flags().StringVar(&flagDestRepo, "dest-repo", "",
		"Destination repository URL (HTTPS or SSH)")
	rootCmd.Flags().StringVar(&flagSourceBranch, "source-branch", "",
		"Branch to mirror from the source")
	rootCmd.Flags().StringVar(&flagDestBranch, "dest-branch", "",
		"Branch name at the destination (defaults to the source branch)")
	rootCmd.Flags().BoolVar(&flagAllBranches, "all-branches", false,
		"Mirror every source branch and delete stale destination branches")
	rootCmd.Flags().StringVar(&flagSyncTags, "sync-tags", "",
		"Tag sync: 'true' for all tags, or a substring/regexp pattern")
	rootCmd.Flags().BoolVar(&flagMainFallback, "main-fallback", true,
		"Fall back to main/master when the source branch does not exist")
	rootCmd.Flags().StringVar(&flagWorkDir, "work-dir", "",
		"Working directory for the mirror clone (defaults to a temp dir)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runSync executes the mirror operation with injected dependencies.
func runSync(cmd *cobra.Command, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Get stderr for warnings
	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Set log level based on verbose flag (best-effort)
	if verbose {
		if err := os.Setenv("LOG_LEVEL", "debug"); err != nil {
			writeWarningf(stderr, "warning: could not set log level: %v\n", err)
		}
	}

	// Initialize logger
	log := deps.LoggerFactory()

	// Load configuration, then let flags override it
	cfg, err := deps.ConfigLoader()
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return fmt.Errorf("configuration error: %w", err)
	}
	applyFlags(cmd, cfg)

	if cfg.SourceRepo == "" || cfg.DestRepo == "" {
		return errors.New("configuration error: both --source-repo and --dest-repo are required")
	}

	input := domain.SyncInput{
		Source: domain.RepoRef{
			URL:        cfg.SourceRepo,
			Credential: domain.Credential{Token: cfg.SourceToken},
		},
		Destination: domain.RepoRef{
			URL:        cfg.DestRepo,
			Credential: domain.Credential{Token: cfg.DestToken},
		},
		SourceBranch:      cfg.SourceBranch,
		DestinationBranch: cfg.DestBranch,
		AllBranches:       cfg.AllBranches,
		SyncTags:          cfg.SyncTags,
		MainFallback:      cfg.MainFallback,
		WorkDir:           flagWorkDir,
	}

	log.Info(ctx, "starting repo-mirror", map[string]interface{}{
		"source":        domain.RedactURL(input.Source.URL),
		"destination":   domain.RedactURL(input.Destination.URL),
		"source_branch": input.SourceBranch,
		"dest_branch":   input.DestinationBranch,
		"all_branches":  input.AllBranches,
		"sync_tags":     input.SyncTags,
	})

	syncer := deps.SyncerFactory(log)
	result, err := syncer.Sync(ctx, input)
	if err != nil {
		log.Error(ctx, "mirror sync failed", err, nil)
		if errors.Is(err, domain.ErrBranchDiverged) {
			return fmt.Errorf("sync blocked: %w", err)
		}
		return err
	}

	// Write sync summary to stdout
	writer := deps.ReportWriterFactory()
	if err := writer.WriteReport(result); err != nil {
		log.Error(ctx, "failed to write report", err, nil)
		return fmt.Errorf("output error: %w", err)
	}

	log.Info(ctx, "mirror sync succeeded", map[string]interface{}{
		"branches_pushed":  len(result.BranchesPushed),
		"branches_deleted": len(result.BranchesDeleted),
		"tags_pushed":      len(result.TagsPushed),
	})

	return nil
}

// applyFlags overrides loaded configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *AppConfig) {
	if flagSourceRepo != "" {
		cfg.SourceRepo = flagSourceRepo
	}
	if flagDestRepo != "" {
		cfg.DestRepo = flagDestRepo
	}
	if flagSourceBranch != "" {
		cfg.SourceBranch = flagSourceBranch
		if !cmd.Flags().Changed("dest-branch") && cfg.DestBranch == "" {
			cfg.DestBranch = flagSourceBranch
		}
	}
	if flagDestBranch != "" {
		cfg.DestBranch = flagDestBranch
	}
	if cmd.Flags().Changed("all-branches") {
		cfg.AllBranches = flagAllBranches
	}
	if flagSyncTags != "" {
		cfg.SyncTags = flagSyncTags
	}
	if cmd.Flags().Changed("main-fallback") {
		cfg.MainFallback = flagMainFallback
	}
	if cfg.DestBranch == "" {
		cfg.DestBranch = cfg.SourceBranch
	}
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// writeWarningf writes a warning message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		return
	}
}
