package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type LocalFileFetcher struct{}

func (LocalFileFetcher) Exists(_ context.Context, src string) (bool, error) {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat input file %s: %w", src, err)
	}
	return info.Mode().IsRegular(), nil
}

func (LocalFileFetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read input file %s: %w", src, err)
	}
	return data, nil
}

// LocalFileEmitter writes outputs to the normalized target path. Requests
// with an OutputDir are confined to OutputDir/<run id>/, keeping only the
// target's base name.
type LocalFileEmitter struct{}

func (LocalFileEmitter) Emit(_ context.Context, req Request, target string, data []byte, _ string) (string, error) {
	fullPath := filepath.Clean(target)
	if strings.TrimSpace(req.OutputDir) != "" {
		runDir := filepath.Join(req.OutputDir, sanitizePathToken(req.RunID))
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
		fullPath = filepath.Join(runDir, filepath.Base(fullPath))
	} else if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return fullPath, nil
}

func sanitizePathToken(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return "unknown"
	}

	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
