package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

func TestWriter_WriteReport(t *testing.T) {
	tests := []struct {
		name       string
		report     *domain.SyncReport
		wantOutput string
	}{
		{
			name: "branches only",
			report: &domain.SyncReport{
				BranchesPushed: []string{"main", "develop"},
			},
			wantOutput: "branches pushed: main, develop\n",
		},
		{
			name:       "empty run still reports",
			report:     &domain.SyncReport{},
			wantOutput: "branches pushed: none\n",
		},
		{
			name: "full report",
			report: &domain.SyncReport{
				BranchesPushed:  []string{"main"},
				BranchesSkipped: []string{"ghost"},
				BranchesDeleted: []string{"stale"},
				TagsPushed:      []string{"v1.0.0"},
			},
			wantOutput: "branches pushed: main\n" +
				"branches skipped: ghost\n" +
				"branches deleted: stale\n" +
				"tags pushed: v1.0.0\n",
		},
		{
			name: "all-tags marker",
			report: &domain.SyncReport{
				BranchesPushed: []string{"main"},
				TagsPushed:     []string{"*"},
			},
			wantOutput: "branches pushed: main\ntags pushed: *\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			writer := NewWriterWithOutput(&buf)

			// Act
			err := writer.WriteReport(tt.report)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestNewWriter_UsesStdout(t *testing.T) {
	writer := NewWriter()
	assert.NotNil(t, writer)
	assert.NotNil(t, writer.out)
}
