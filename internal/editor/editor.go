package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/amterp/cardman/internal/model"
)

// Editor handles editor resolution and invocation.
type Editor struct {
	config *model.Config
}

// NewEditor creates a new Editor.
func NewEditor(config *model.Config) *Editor {
	return &Editor{config: config}
}

// Resolve returns the editor command to use.
// Order: config (or CARDMAN_EDITOR) > $VISUAL > $EDITOR > vi
func (e *Editor) Resolve() string {
	if e.config != nil && e.config.Editor != "" {
		return e.config.Editor
	}

	for _, name := range []string{"VISUAL", "EDITOR"} {
		if editor := os.Getenv(name); editor != "" {
			return editor
		}
	}

	return "vi"
}

// Edit opens the editor with the given content and returns the edited content.
// The editor command may carry arguments, e.g. "code --wait".
func (e *Editor) Edit(content string) (string, error) {
	tmpFile, err := os.CreateTemp("", "cardman-edit-*.md")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return "", err
	}
	tmpFile.Close()

	argv := strings.Fields(e.Resolve())
	if len(argv) == 0 {
		return "", fmt.Errorf("no editor configured")
	}
	cmd := exec.Command(argv[0], append(argv[1:], tmpPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("editor %q failed: %w", argv[0], err)
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", err
	}

	return string(edited), nil
}
