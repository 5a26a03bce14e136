package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainRenderer_ProgressLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))
	require.NoError(t, r.Start(context.Background()))

	r.UpdateProgress(ProgressEvent{Stage: StageParsing, Current: 3, Total: 10, CurrentFile: "guides/state.md"})

	assert.Contains(t, buf.String(), "[PARSE] 3/10 - guides/state.md")
}

func TestPlainRenderer_MessageWithoutTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.UpdateProgress(ProgressEvent{Stage: StageScanning, Message: "discovering sources"})

	assert.Contains(t, buf.String(), "[SCAN] discovering sources")
}

func TestPlainRenderer_Errors(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.AddError(ErrorEvent{File: "broken.md", Err: errors.New("unreadable"), IsWarn: true})
	r.AddError(ErrorEvent{Err: errors.New("fatal")})

	out := buf.String()
	assert.Contains(t, out, "WARN: broken.md: unreadable")
	assert.Contains(t, out, "ERROR: fatal")
}

func TestPlainRenderer_Complete(t *testing.T) {
	var buf bytes.Buffer
	r := NewPlainRenderer(NewConfig(&buf))

	r.Complete(CompletionStats{Pages: 12, Components: 4, Skipped: 1, Duration: 1234 * time.Millisecond})

	out := buf.String()
	assert.Contains(t, out, "12 pages")
	assert.Contains(t, out, "4 components")
	assert.Contains(t, out, "1 files skipped")
	require.NoError(t, r.Stop())
}

func TestNewRenderer_NonTTYFallsBackToPlain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(NewConfig(&buf))
	_, ok := r.(*PlainRenderer)
	assert.True(t, ok)
}

func TestIsTTY_NilAndBuffer(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestStageStrings(t *testing.T) {
	assert.Equal(t, "Parsing", StageParsing.String())
	assert.Equal(t, "PARSE", StageParsing.Icon())
	assert.Equal(t, "DONE", StageComplete.Icon())
	assert.Equal(t, "Unknown", Stage(99).String())
}
