package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})
	return &buf
}

func TestInfowEmitsAttributes(t *testing.T) {
	buf := captureOutput(t)

	Infow("loop started", "loop", "executor", "interval", "5s")

	out := buf.String()
	assert.Contains(t, out, "msg=\"loop started\"")
	assert.Contains(t, out, "loop=executor")
	assert.Contains(t, out, "interval=5s")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := captureOutput(t)

	SetLevel("info")
	Debugw("hidden", "k", "v")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	Debugf("now visible %d", 42)
	assert.Contains(t, buf.String(), "now visible 42")
}
