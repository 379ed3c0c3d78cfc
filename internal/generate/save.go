package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abhisek/kidquest/internal/catalog"
)

// Save writes g as a game file into dir, creating dir if needed. An
// existing file is never overwritten. The encoded file is parsed back
// before writing so only loadable content reaches disk.
func Save(dir string, g catalog.Game) (string, error) {
	data, err := catalog.Encode(g)
	if err != nil {
		return "", err
	}
	name := catalog.FileName(g.ID)
	if _, err := catalog.Parse(name, data); err != nil {
		return "", fmt.Errorf("generated game does not round-trip: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%s already exists", path)
		}
		return "", fmt.Errorf("create game file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write game file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write game file: %w", err)
	}
	return path, nil
}
