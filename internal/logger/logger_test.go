package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugHiddenByDefault(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("page fetched", "cursor", "abc")

	assert.Zero(t, buf.Len(), "debug output should be suppressed unless verbose")
}

func TestDebugShownWhenVerbose(t *testing.T) {
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("page fetched", "cursor", "abc")

	assert.Contains(t, buf.String(), "page fetched")
	assert.Contains(t, buf.String(), "cursor")
}

func TestInfoIncludesKeyvals(t *testing.T) {
	defer SetOutput(os.Stderr)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("batch complete", "size", 20)

	assert.Contains(t, buf.String(), "batch complete")
	assert.Contains(t, buf.String(), "size")
	assert.Contains(t, buf.String(), "20")
}

func TestWarnAndErrorAlwaysEmit(t *testing.T) {
	defer SetOutput(os.Stderr)

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("rate limit low")
	Error("batch abandoned", "err", "boom")

	assert.Contains(t, buf.String(), "rate limit low")
	assert.Contains(t, buf.String(), "batch abandoned")
	assert.Contains(t, buf.String(), "boom")
}
