package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, false)
	defer Init(false)

	Debug("hidden", "key", "value")
	Warn("also hidden")

	assert.False(t, Enabled())
	assert.Empty(t, buf.String())

	Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitWithWriter_Enabled(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, true)
	defer Init(false)

	Debug("diff cols", "table", "users")

	assert.True(t, Enabled())
	out := buf.String()
	assert.Contains(t, out, "diff cols")
	assert.Contains(t, out, "table=users")
	assert.NotContains(t, out, "\x1b[", "no color codes when not writing to a terminal")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, true)
	defer Init(false)

	With("component", "differ").Info("started")

	assert.Contains(t, buf.String(), "component=differ")
}
