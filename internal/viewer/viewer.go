// Package viewer displays an encoded image to the user.
package viewer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

type Viewer interface {
	Show(ctx context.Context, png []byte) error
}

// Command writes the image to a temp file and runs an external viewer on it,
// waiting for the viewer to exit.
type Command struct {
	// Name is the viewer program, optionally with arguments. The file path
	// is appended as the last argument.
	Name string
	Log  logrus.FieldLogger
}

// DefaultCommand is the platform's "open this file" program.
func DefaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

func (c Command) Show(ctx context.Context, png []byte) error {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		fields = []string{DefaultCommand()}
	}

	f, err := os.CreateTemp("", "imgbox-*.png")
	if err != nil {
		return fmt.Errorf("create preview file: %w", err)
	}
	if _, err := f.Write(png); err != nil {
		f.Close()
		return fmt.Errorf("write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close preview file: %w", err)
	}
	if c.Log != nil {
		c.Log.Infof("Preview written to %s.", f.Name())
	}

	args := append(slices.Clone(fields[1:]), f.Name())
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run viewer %s: %w", fields[0], err)
	}
	return nil
}

// Headless is used where nobody can look at the screen.
type Headless struct {
	Log logrus.FieldLogger
}

func (h Headless) Show(context.Context, []byte) error {
	if h.Log != nil {
		h.Log.Warn("Display requested but no viewer is available; skipping.")
	}
	return nil
}
