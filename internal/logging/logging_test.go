package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONAddsServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("storefront", "1.2.3", "json", &buf)

	logger.Info("hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "storefront", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "v", entry["k"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("storefront", "dev", "text", &buf)

	logger.With("user", "u1").Info("login")

	line := buf.String()
	assert.True(t, strings.Contains(line, "msg=login"))
	assert.True(t, strings.Contains(line, "user=u1"))
	assert.True(t, strings.Contains(line, "service=storefront"))
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("STORE_ERROR").With("operation", "FindByEmail").Errorf("connection refused")
	LogError(logger, "login failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "login failed", entry["msg"])
	assert.Equal(t, "STORE_ERROR", entry["code"])
	assert.Contains(t, entry["error"], "connection refused")
}

func TestLogError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(logger, "failed", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.NotContains(t, entry, "code")
}
