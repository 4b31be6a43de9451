package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentFusion/internal/config"
	"github.com/turtacn/PatentFusion/internal/infrastructure/monitoring/logging"
)

// newRunConfig builds a finalized config over a real corpus directory.
func newRunConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "EP"), 0o755))

	cfg := &config.Config{
		Paths: config.PathsConfig{
			VerticalOriginPath: root,
			DestinationPath:    filepath.Join(root, "results"),
			PatentOffice:       "EP",
		},
		General: config.GeneralConfig{
			MaxTextLength:          "ALL",
			OutputFormats:          []string{"xml", "csv"},
			EnableMergedInspection: true,
		},
		ParseFlags: config.ParseFlagsConfig{
			Country: true, Date: true, FamilyID: true, FileReferenceID: true,
			DateProduced: true, Abstract: true, Claims: true, Description: true,
			Title: true, IPCR: true, CPC: true, MainClassification: true,
			FurtherClassification: true, Applicants: true, Inventors: true,
			Agents: true, Citations: true, Drawings: true, Lang: "ALL",
		},
		Performance: config.PerformanceConfig{
			BatchSize: 10, ChunkSize: "100", CPUCount: "2", MemoryLimit: "8",
		},
		Priority: config.PriorityConfig{GlobalPriority: []string{"B1", "A1"}},
	}
	cfg.Finalize(8, func() int { return 100 }, logging.NewNopLogger())
	return cfg
}

func seedCorpus(t *testing.T, cfg *config.Config, patents int) {
	t.Helper()
	dir := filepath.Join(cfg.InputRoot, "20140820", "A")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := 0; i < patents; i++ {
		a1 := fmt.Sprintf(
			`<patent-document ucid="EP-%03d-A1" kind="A1" lang="EN"><abstract lang="EN"><p>application %d</p></abstract><description lang="EN"><p>body</p></description></patent-document>`, i, i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("EP-%03d-A1.xml", i)), []byte(a1), 0o644))

		// Every third patent also has a granted B1 variant, producing merges.
		if i%3 == 0 {
			b1 := fmt.Sprintf(
				`<patent-document ucid="EP-%03d-B1" kind="B1" lang="EN"><claims lang="EN"><claim><claim-text>claim %d</claim-text></claim></claims></patent-document>`, i, i)
			require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("EP-%03d-B1.xml", i)), []byte(b1), 0o644))
		}
	}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := newRunConfig(t)
	seedCorpus(t, cfg, 12)

	err := Run(context.Background(), cfg, logging.NewNopLogger(), true)
	require.NoError(t, err)

	// One artifact per patent per format.
	xmlDir := filepath.Join(cfg.IndividualVPDir, "EP", "xml")
	entries, err := os.ReadDir(xmlDir)
	require.NoError(t, err)
	assert.Len(t, entries, 12)

	csvDir := filepath.Join(cfg.IndividualVPDir, "EP", "csv")
	entries, err = os.ReadDir(csvDir)
	require.NoError(t, err)
	assert.Len(t, entries, 12)

	// Merged patents (every third) routed to inspection.
	inspectionDir := filepath.Join(cfg.InspectionDir, "EP", "xml")
	entries, err = os.ReadDir(inspectionDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	// A merged patent carries the contributions of both variants.
	data, err := os.ReadFile(filepath.Join(xmlDir, "EP-000-VP.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `kind-merging="B1,A1"`)
	assert.Contains(t, string(data), `kind-source="B1"`)
	assert.Contains(t, string(data), `kind-source="A1"`)

	// Temp files are gone before the run terminates.
	assert.NoDirExists(t, cfg.TempDir)
}

func TestRun_NoFilesIsSuccessWithWarning(t *testing.T) {
	cfg := newRunConfig(t)

	err := Run(context.Background(), cfg, logging.NewNopLogger(), true)
	assert.NoError(t, err)
}

func TestNewRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "patentfusion", cmd.Use)
	assert.NotEmpty(t, cmd.Version)
}
