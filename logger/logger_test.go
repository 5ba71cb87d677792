package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "task-tracker", "debug", "json")

	ForModule(log, "task").WithField("task_id", 4).Warn("history append failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "task-tracker", entry["service"])
	assert.Equal(t, "task", entry["module"])
	assert.Equal(t, "history append failed", entry["message"])
	assert.Equal(t, "warning", entry["level"])
	assert.EqualValues(t, 4, entry["task_id"])
	assert.Contains(t, entry, "ts")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput(&buf, "svc", "chatty", "text")

	assert.Equal(t, logrus.InfoLevel, log.Logger.GetLevel())
	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestForModule_NilBase(t *testing.T) {
	log := ForModule(nil, "user")
	assert.Equal(t, "user", log.Data["module"])
	log.Info("goes nowhere")
}
