package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "debug", "json")

	logger.WithField("component", "session").Debug("rehydrated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rehydrated", entry["msg"])
	assert.Equal(t, "session", entry["component"])
}

func TestNewWithOutputUnknownLevel(t *testing.T) {
	logger := NewWithOutput(&bytes.Buffer{}, "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
