package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
	"github.com/YuminosukeSato/autoprice/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	quiet, _ := log.NewTestLoggerProvider(log.LevelError)
	prev := log.SetProvider(quiet)
	t.Cleanup(func() { log.SetProvider(prev) })

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTrainSynthetic(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "train",
		"--synthetic", "400",
		"--n-estimators", "10",
		"--current-year", "2024",
		"--log-level", "error",
		"--plots-dir", dir,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Evaluation")
	assert.Contains(t, out, "fingerprint")

	for _, f := range []string{report.ImportancesFile, report.ActualVsPredictedFile, report.ResidualsFile, report.StagedErrorFile} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}
}

func TestTrainCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,year\n1000,2010\n"), 0o600))

	_, err := execute(t, "train", "--data", path, "--log-level", "error")
	assert.True(t, errors.IsDataError(err), "got %v", err)
}

func TestTrainRequiresSource(t *testing.T) {
	_, err := execute(t, "train", "--log-level", "error")
	assert.True(t, errors.IsConfigurationError(err))
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	_, err := execute(t, "train", "--synthetic", "100", "--test-fraction", "1.5")
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "test_fraction", ve.ParamName)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("AUTOPRICE_LOSS", "huber")
	out, err := execute(t, "config", "--max-depth", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "max_depth: 5")
	assert.Contains(t, out, "loss: huber")
	assert.Contains(t, out, "n_estimators: 100")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "autoprice "+Version)
}
