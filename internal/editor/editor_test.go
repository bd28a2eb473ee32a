package editor

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amterp/cardman/internal/model"
)

func TestResolve_Order(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	assert.Equal(t, "vi", NewEditor(nil).Resolve())

	t.Setenv("EDITOR", "nano")
	assert.Equal(t, "nano", NewEditor(nil).Resolve())

	t.Setenv("VISUAL", "emacs")
	assert.Equal(t, "emacs", NewEditor(&model.Config{}).Resolve())

	assert.Equal(t, "hx", NewEditor(&model.Config{Editor: "hx"}).Resolve())
}

func TestEdit_ReturnsEditedContent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}

	script := filepath.Join(t.TempDir(), "fake-editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf 'edited text' > \"$1\"\n"), 0755))

	out, err := NewEditor(&model.Config{Editor: script}).Edit("original")

	require.NoError(t, err)
	assert.Equal(t, "edited text", out)
}

func TestEdit_EditorFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the false command")
	}

	_, err := NewEditor(&model.Config{Editor: "false"}).Edit("original")

	assert.Error(t, err)
}
