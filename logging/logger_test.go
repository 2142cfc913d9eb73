package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger_EmitsStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelInfo)

	l.Info("orchestrator.start", "goal", "flood response", "kinds", 3)
	l.Debug("orchestrator.transition") // below level, dropped

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "orchestrator.start", line["msg"])
	assert.Equal(t, "flood response", line["goal"])
	assert.EqualValues(t, 3, line["kinds"])
}

func TestWithRun_AttachesRunID(t *testing.T) {
	var buf bytes.Buffer
	l := WithRun(NewJSONLogger(&buf, slog.LevelInfo), "run-42")

	l.Warn("orchestrator.recover")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "run-42", line["run_id"])
}

func TestWithRun_PassesThroughUnknownLoggers(t *testing.T) {
	l := NoOpLogger{}
	assert.Equal(t, Logger(l), WithRun(l, "run-42"))
}

func TestNoOpLogger_Discards(t *testing.T) {
	var l NoOpLogger
	l.Debug("a")
	l.Info("b", "k", "v")
	l.Warn("c")
	l.Error("d")
}
