package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugSuppressedWhenNotVerbose(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden %d", 1)
	Info("hidden %s", "too")
	Section("hidden")

	assert.Empty(t, buf.String())
}

func TestVerboseEnablesDebugAndInfo(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("value=%d", 42)
	Info("loaded %s", "index")
	Section("Query")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] value=42")
	assert.Contains(t, out, "[INFO] loaded index")
	assert.Contains(t, out, "=== Query ===")
}

func TestWarnAndErrorAlwaysEmitted(t *testing.T) {
	defer resetLogger()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("drift on %s", "chunk-1")
	Error("save failed: %s", "disk full")

	out := buf.String()
	assert.Contains(t, out, "[WARN] drift on chunk-1")
	assert.Contains(t, out, "[ERROR] save failed: disk full")
}

func TestIsVerbose(t *testing.T) {
	defer resetLogger()

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
