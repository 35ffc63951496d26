package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shipper/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_PrettyError(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	log := logger.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)

	inner := zerr.New("manifest inspect returned 404")
	log.Error(zerr.Wrap(inner, "image publish failed"))

	out := buf.String()
	assert.Contains(t, out, "Error: image publish failed")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "manifest inspect returned 404")
}

func TestLogger_JSONMode(t *testing.T) {
	log := logger.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetJSON(true)

	log.Info("hashed source tree")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hashed source tree", record["msg"])
	assert.Equal(t, "INFO", record["level"])
}

func TestLogger_NilError(t *testing.T) {
	log := logger.New()
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Error(nil)
	assert.Empty(t, buf.String())
}
