// Package cmd provides CLI commands for repo-mirror.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Test mocks for dependency injection testing.

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Info(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{})          {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})           {}
func (m *mockLogger) Error(_ context.Context, _ string, _ error, _ map[string]interface{}) {}

// mockSyncer implements domain.Syncer for testing.
type mockSyncer struct {
	report *domain.SyncReport
	err    error

	receivedInput domain.SyncInput
	called        bool
}

func (m *mockSyncer) Sync(_ context.Context, input domain.SyncInput) (*domain.SyncReport, error) {
	m.called = true
	m.receivedInput = input
	return m.report, m.err
}

// mockReportWriter implements domain.ReportWriter for testing.
type mockReportWriter struct {
	written  *domain.SyncReport
	writeErr error
}

func (m *mockReportWriter) WriteReport(report *domain.SyncReport) error {
	m.written = report
	return m.writeErr
}

func testDeps(syncer *mockSyncer, writer *mockReportWriter, cfg *AppConfig) *Dependencies {
	if cfg == nil {
		cfg = &AppConfig{
			SourceRepo:   "https://github.com/org/app",
			DestRepo:     "https://git.example.com/app",
			SourceBranch: "main",
			DestBranch:   "main",
			MainFallback: true,
		}
	}
	return &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func() (*AppConfig, error) {
			return cfg, nil
		},
		SyncerFactory: func(_ Logger) domain.Syncer {
			return syncer
		},
		ReportWriterFactory: func() domain.ReportWriter {
			return writer
		},
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

func TestNewRootCmd(t *testing.T) {
	// Set default deps so NewRootCmd() works
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	require.NotNil(t, cmd)
	assert.Equal(t, "repo-mirror", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	// Check flags are registered
	for _, name := range []string{
		"source-repo", "dest-repo", "source-branch", "dest-branch",
		"all-branches", "sync-tags", "main-fallback", "work-dir",
	} {
		require.NotNil(t, cmd.Flags().Lookup(name), "flag %s must be registered", name)
	}

	fallbackFlag := cmd.Flags().Lookup("main-fallback")
	assert.Equal(t, "true", fallbackFlag.DefValue)

	verboseFlag := cmd.Flags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestNewRootCmd_RejectsPositionalArgs(t *testing.T) {
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	err := cmd.Args(cmd, []string{})
	require.NoError(t, err)

	err = cmd.Args(cmd, []string{"unexpected"})
	require.Error(t, err)
}

func TestNewRootCmd_HelpOutput(t *testing.T) {
	SetDefaultDependencies(&Dependencies{})
	cmd := NewRootCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "repo-mirror")
	assert.Contains(t, output, "--source-repo")
	assert.Contains(t, output, "--all-branches")
	assert.Contains(t, output, "--sync-tags")
}

func TestRootCmd_NilDependencies(t *testing.T) {
	cmd := NewRootCmdWithDeps(nil)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dependencies not configured")
}

func TestRootCmd_ConfigLoadError(t *testing.T) {
	deps := &Dependencies{
		LoggerFactory: func() Logger { return &mockLogger{} },
		ConfigLoader: func() (*AppConfig, error) {
			return nil, errors.New("failed to load config")
		},
		Stderr: io.Discard,
	}

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRootCmd_MissingRepos(t *testing.T) {
	syncer := &mockSyncer{}
	deps := testDeps(syncer, &mockReportWriter{}, &AppConfig{})

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--source-repo")
	assert.False(t, syncer.called)
}

func TestRootCmd_DivergedBranchError(t *testing.T) {
	syncer := &mockSyncer{
		err: fmt.Errorf("%w: branch \"main\"", domain.ErrBranchDiverged),
	}
	deps := testDeps(syncer, &mockReportWriter{}, nil)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBranchDiverged)
	assert.Contains(t, err.Error(), "sync blocked")
}

func TestRootCmd_BranchNotFoundError(t *testing.T) {
	syncer := &mockSyncer{
		err: fmt.Errorf("%w: %q", domain.ErrBranchNotFound, "release"),
	}
	deps := testDeps(syncer, &mockReportWriter{}, nil)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)
}

func TestRootCmd_ReportWriteError(t *testing.T) {
	syncer := &mockSyncer{report: &domain.SyncReport{}}
	writer := &mockReportWriter{writeErr: errors.New("write failed")}
	deps := testDeps(syncer, writer, nil)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "output error")
}

func TestRootCmd_Success(t *testing.T) {
	report := &domain.SyncReport{
		BranchesPushed: []string{"main"},
		TagsPushed:     []string{"v1.0.0"},
	}
	syncer := &mockSyncer{report: report}
	writer := &mockReportWriter{}
	deps := testDeps(syncer, writer, nil)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.True(t, syncer.called)
	assert.Equal(t, report, writer.written)

	input := syncer.receivedInput
	assert.Equal(t, "https://github.com/org/app", input.Source.URL)
	assert.Equal(t, "https://git.example.com/app", input.Destination.URL)
	assert.Equal(t, "main", input.SourceBranch)
	assert.Equal(t, "main", input.DestinationBranch)
}

func TestRootCmd_FlagsOverrideConfig(t *testing.T) {
	syncer := &mockSyncer{report: &domain.SyncReport{}}
	deps := testDeps(syncer, &mockReportWriter{}, nil)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{
		"--source-repo", "https://github.com/other/repo",
		"--source-branch", "develop",
		"--dest-branch", "production",
		"--all-branches",
		"--sync-tags", "true",
		"--main-fallback=false",
	})

	err := cmd.Execute()

	require.NoError(t, err)
	input := syncer.receivedInput
	assert.Equal(t, "https://github.com/other/repo", input.Source.URL)
	assert.Equal(t, "develop", input.SourceBranch)
	assert.Equal(t, "production", input.DestinationBranch)
	assert.True(t, input.AllBranches)
	assert.Equal(t, "true", input.SyncTags)
	assert.False(t, input.MainFallback)
}

func TestRootCmd_TokensReachSyncInput(t *testing.T) {
	cfg := &AppConfig{
		SourceRepo:  "https://github.com/org/app",
		DestRepo:    "https://git.example.com/app",
		SourceToken: "src-tok",
		DestToken:   "dst-tok",
	}
	syncer := &mockSyncer{report: &domain.SyncReport{}}
	deps := testDeps(syncer, &mockReportWriter{}, cfg)

	cmd := NewRootCmdWithDeps(deps)
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "src-tok", syncer.receivedInput.Source.Credential.Token)
	assert.Equal(t, "dst-tok", syncer.receivedInput.Destination.Credential.Token)
}
