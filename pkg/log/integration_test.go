package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/autoprice/pkg/errors"
)

func TestLoggerInterface(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ColumnKey, "odometer")
	testLogger.Error("error message", fmt.Errorf("test error"), StageKey, "impute")

	require.NotEmpty(t, buffer.String())
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0)) // JSON numbers are float64
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
	assert.True(t, testLogger.ContainsField(StageKey, "impute"))
}

func TestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "GradientBoostingRegressor",
		ComponentKey, "ensemble",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "GradientBoostingRegressor"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "ensemble"))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationFit))
}

func TestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				assert.True(t, perrors.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(LevelInfo, &buf)

	logger := provider.GetLoggerWithName("outlier")
	logger.Debug("hidden")
	logger.Info("filter applied", SamplesKey, 90, DroppedKey, 10, ThresholdKey, 3.0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "filter applied", entry["message"])
	assert.Equal(t, "outlier", entry[ComponentKey])
	assert.Equal(t, 90.0, entry[SamplesKey])
	assert.Equal(t, 3.0, entry[ThresholdKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestZerologProviderStructuredError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(LevelDebug, &buf).GetLogger()

	err := perrors.NewDataError("select", "", "no feature scored above threshold")
	logger.Error("pipeline failed", err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, err.Error(), entry[ErrAttrKey])

	detail, ok := entry[ErrAttrKey+"_detail"].(map[string]interface{})
	require.True(t, ok, "typed error should be marshalled as an object")
	assert.Equal(t, "DataError", detail["type"])
	assert.Equal(t, "select", detail["stage"])
}

func TestWarningsRouteToProvider(t *testing.T) {
	provider, captured := NewTestLoggerProvider(LevelDebug)
	prev := SetProvider(provider)
	defer SetProvider(prev)

	perrors.Warn(perrors.NewDegeneracyWarning("outlier", "odometer", "standard deviation is zero", "no rows removed"))

	assert.True(t, captured.ContainsMessage("standard deviation is zero"))
	assert.True(t, captured.ContainsField(ComponentKey, "warnings"))
}
