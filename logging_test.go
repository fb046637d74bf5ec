package gltfview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_DebugToggle(t *testing.T) {
	var buf bytes.Buffer
	l := NewDefaultLoggerTo(&buf, "gltfview", false)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, buf.String())
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	l.Debugf("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
	assert.Contains(t, buf.String(), "gltfview")

	buf.Reset()
	l.Warnf("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
}
