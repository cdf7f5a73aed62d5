package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	prevHandler := CurrentHandler()
	prevLevel := Level()
	SetHandler(NewWriterHandler(buf))
	t.Cleanup(func() {
		SetHandler(prevHandler)
		SetLevel(prevLevel)
	})
	return buf
}

func TestMinimalLevel(t *testing.T) {
	buf := capture(t)
	require.NoError(t, SetMinimalLevelByName(" warning "))

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warning("warning %d", 3)
	Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARNING ")
	assert.Contains(t, out, "warning 3")
	assert.Contains(t, out, "error 4")
}

func TestMaskLevelByName(t *testing.T) {
	capture(t)
	require.NoError(t, SetMinimalLevelByName("normal"))
	assert.Equal(t, NORMAL, Level())
	require.NoError(t, SetMinimalLevelByName("nothing"))
	assert.Equal(t, NOTHING, Level())
}

func TestInvalidLevel(t *testing.T) {
	capture(t)
	assert.Error(t, SetMinimalLevelByName("verbose"))
}

func TestCallerContext(t *testing.T) {
	buf := capture(t)
	SetLevel(ALL)
	Info("hello")
	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, " logging/logging_test.go:")
	assert.True(t, strings.HasSuffix(line, "] hello"), line)
}

func TestLazyArgs(t *testing.T) {
	buf := capture(t)
	SetLevel(ALL)
	called := false
	Debug("value %v", func() interface{} { called = true; return "lazy" })
	assert.True(t, called)
	assert.Contains(t, buf.String(), "value lazy")

	called = false
	SetLevel(NOTHING)
	Debug("value %v", func() interface{} { called = true; return "lazy" })
	assert.False(t, called)
}

func TestSimpleFormatter(t *testing.T) {
	ctx := &MessageContext{Level: "DEBUG", Component: "evaluator", File: "evaluator.go", Line: 73, TimeStamp: time.Date(2021, 1, 1, 1, 20, 26, 512000000, time.UTC)}
	assert.Equal(t,
		"[DEBUG 01:20:26.512 evaluator/evaluator.go:73] Resolving linkable-library dependency dbus",
		DefaultFormatter.Format(ctx, "Resolving %s dependency %s", "linkable-library", "dbus"),
	)

	short := &SimpleFormatter{FormatString: "%[3]s: %[6]s"}
	assert.Equal(t, "evaluator: done", short.Format(ctx, "done"))
}
