package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestVerboseOnlyLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{name: "debug", log: func() { Debug("chunk %d", 3) }, want: "[DEBUG] chunk 3\n"},
		{name: "info", log: func() { Info("ingested %s", "npn") }, want: "[INFO] ingested npn\n"},
		{name: "section", log: func() { Section("Query") }, want: "\n=== Query ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			assert.Empty(t, buf.String())
		})
	}
}

func TestWarnAndErrorAlwaysPrint(t *testing.T) {
	buf := capture(t, false)

	Warn("watch %s: %v", "/tmp", "gone")
	Error("store closed")

	assert.Equal(t, "[WARN] watch /tmp: gone\n[ERROR] store closed\n", buf.String())
}

func TestStage(t *testing.T) {
	buf := capture(t, true)

	done := Stage("extract")
	done()

	assert.True(t, strings.HasPrefix(buf.String(), "[TIME] extract: "), buf.String())

	quiet := capture(t, false)
	Stage("chunk")()
	assert.Empty(t, quiet.String())
}

func TestConcurrentLogging(t *testing.T) {
	buf := capture(t, true)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			Debug("message %d", i)
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.Equal(t, 10, strings.Count(buf.String(), "[DEBUG]"))
}
