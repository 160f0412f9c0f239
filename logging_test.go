package particlelogo

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_DebugGating(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLoggerTo("logo", false, log.New(&out, "", 0), log.New(&errOut, "", 0))

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Equal(t, "[logo] DEBUG: shown 2\n", out.String())
}

func TestDefaultLogger_Streams(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLoggerTo("", false, log.New(&out, "", 0), log.New(&errOut, "", 0))

	l.Infof("ready")
	l.Warnf("no adapter")
	l.Errorf("window missing")

	assert.Equal(t, "INFO: ready\n", out.String())
	assert.Equal(t, "WARN: no adapter\nERROR: window missing\n", errOut.String())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	assert.False(t, OrNop(nil).DebugEnabled())

	l := NewDefaultLogger("x", true)
	assert.Same(t, l, OrNop(l))
}
